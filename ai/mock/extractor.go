package mock

import (
	"context"
	"encoding/json"

	"github.com/poiesic/docsift/ai"
)

// MockFieldExtractor is a test double for ai.FieldExtractor.
// It allows custom behavior injection via function fields.
type MockFieldExtractor struct {
	// ExtractFieldsFunc is called by ExtractFields if set.
	// If nil, uses a default fixed result.
	ExtractFieldsFunc func(ctx context.Context, text string) (*ai.ExtractionResult, error)

	callCount int
	lastText  string
}

// NewMockFieldExtractor creates a mock field extractor with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockFieldExtractor() *MockFieldExtractor {
	return &MockFieldExtractor{}
}

// ExtractFields returns a fixed, shape-complete extraction result.
// The default result classifies everything as "unknown" with empty lists
// and records a modest confidence for the classification.
func (m *MockFieldExtractor) ExtractFields(ctx context.Context, text string) (*ai.ExtractionResult, error) {
	m.callCount++
	m.lastText = text

	if m.ExtractFieldsFunc != nil {
		return m.ExtractFieldsFunc(ctx, text)
	}

	return &ai.ExtractionResult{
		Schema: json.RawMessage(`{"type":"object","properties":{"document_type":{"type":"string"}}}`),
		Extracted: json.RawMessage(`{
			"document_type": "unknown",
			"person": null,
			"summary": null,
			"skills": [],
			"experience": [],
			"education": [],
			"highlights": []
		}`),
		Confidence: map[string]float64{"document_type": 0.5},
	}, nil
}

// CallCount returns the number of times ExtractFields was called.
func (m *MockFieldExtractor) CallCount() int {
	return m.callCount
}

// LastText returns the text passed to the most recent ExtractFields call.
func (m *MockFieldExtractor) LastText() string {
	return m.lastText
}

// Reset clears the call count and custom functions.
func (m *MockFieldExtractor) Reset() {
	m.callCount = 0
	m.lastText = ""
	m.ExtractFieldsFunc = nil
}
