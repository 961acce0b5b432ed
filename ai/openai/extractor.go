// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/docsift/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// FieldExtractor implements ai.FieldExtractor using OpenAI-compatible chat APIs.
type FieldExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// extraction is the wrapper structure for the LLM's JSON response.
// All three keys are required; a response missing any of them is malformed.
type extraction struct {
	Schema     json.RawMessage    `json:"schema"`
	Extracted  json.RawMessage    `json:"extracted"`
	Confidence map[string]float64 `json:"confidence"`
}

// newFieldExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newFieldExtractor(config *ai.Config) (*FieldExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/extraction
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken("none"),
		openai.WithModel(config.CompletionModel),
		openai.WithHTTPClient(&http.Client{Timeout: config.RequestTimeout}),
	)
	if err != nil {
		return nil, err
	}

	return &FieldExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewFieldExtractor creates a new field extractor using the provided configuration.
//
// Returns ai.FieldExtractor interface to enforce abstraction.
func NewFieldExtractor(config *ai.Config) (ai.FieldExtractor, error) {
	return newFieldExtractor(config)
}

// ExtractFields discovers a schema for the text and extracts structured fields
// with per-field confidence using an LLM in strict JSON mode.
func (e *FieldExtractor) ExtractFields(ctx context.Context, text string) (*ai.ExtractionResult, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildExtractionPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result extraction
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			lastErr = fmt.Errorf("%w: no choices returned from model", ai.ErrSchemaDiscovery)
			e.logger.Warn("no choices returned from model", "attempt", attempt+1)
			continue
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		if responseText == "" {
			lastErr = fmt.Errorf("%w: empty response", ai.ErrSchemaDiscovery)
			e.logger.Warn("empty extraction response", "attempt", attempt+1)
			continue
		}

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = fmt.Errorf("%w: %v", ai.ErrSchemaDiscovery, err)
			e.logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		if len(result.Schema) == 0 || len(result.Extracted) == 0 {
			lastErr = fmt.Errorf("%w: response missing schema or extracted key", ai.ErrSchemaDiscovery)
			e.logger.Warn("extraction response missing required keys", "attempt", attempt+1)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extraction response after retries", "err", lastErr)
		return nil, lastErr
	}

	extracted, err := normalizeExtracted(result.Extracted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrSchemaDiscovery, err)
	}

	return &ai.ExtractionResult{
		Schema:     result.Schema,
		Extracted:  extracted,
		Confidence: clampConfidence(result.Confidence),
	}, nil
}
