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


package chat

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// truncationMarker is appended to the excerpt when the document text exceeds
// the excerpt budget.
const truncationMarker = "\n... [truncated]"

const systemPromptTemplate = `You are an assistant answering questions about one specific document. Ground every answer in the material below; say so plainly when it does not contain the answer.

DOCUMENT EXCERPT:
%s

EXTRACTED FIELDS (JSON):
%s

DISCOVERED SCHEMA (JSON):
%s

Format answers in Markdown: use headings, bold, and bullet lists where they help.
For precise lookups prefer the tools over the excerpt:
- fetch_extracted_field returns a value from the extracted fields by dotted path, or the whole object when no path is given.
- search_document_text finds matching lines anywhere in the full document text, including parts beyond the excerpt.`

// buildSystemPrompt assembles the per-turn system message from a bounded
// excerpt of the context text plus the full extracted object and schema.
func buildSystemPrompt(contextText string, extracted, schema json.RawMessage, excerptChars int) string {
	extractedJSON := "null"
	if len(extracted) > 0 {
		extractedJSON = string(extracted)
	}
	schemaJSON := "null"
	if len(schema) > 0 {
		schemaJSON = string(schema)
	}
	return fmt.Sprintf(systemPromptTemplate, excerpt(contextText, excerptChars), extractedJSON, schemaJSON)
}

// excerpt bounds text to limit characters, marking the cut when it happens.
func excerpt(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + truncationMarker
}
