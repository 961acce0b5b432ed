package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/docsift/ai"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "schema": {
      "type": "object",
      "description": "A JSON Schema describing the shape of the extracted object"
    },
    "extracted": {
      "type": "object",
      "properties": {
        "document_type": {
          "type": "string",
          "enum": ["resume", "cover_letter", "invoice", "unknown"]
        },
        "person": {
          "type": ["object", "null"],
          "properties": {
            "name": {"type": ["string", "null"]},
            "email": {"type": ["string", "null"]},
            "phone": {"type": ["string", "null"]},
            "location": {"type": ["string", "null"]}
          }
        },
        "summary": {"type": ["string", "null"]},
        "skills": {"type": "array", "items": {"type": "string"}},
        "experience": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "title": {"type": ["string", "null"]},
              "company": {"type": ["string", "null"]},
              "start": {"type": ["string", "null"]},
              "end": {"type": ["string", "null"]},
              "description": {"type": ["string", "null"]}
            }
          }
        },
        "education": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "institution": {"type": ["string", "null"]},
              "degree": {"type": ["string", "null"]},
              "year": {"type": ["string", "null"]}
            }
          }
        },
        "highlights": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["document_type", "person", "summary", "skills", "experience", "education", "highlights"]
    },
    "confidence": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0, "maximum": 1}
    }
  },
  "required": ["schema", "extracted", "confidence"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Analyze the given document text, infer a schema for its structured content, and extract that content as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must be a single object with exactly three top-level keys: "schema", "extracted", "confidence".
It must exactly follow this schema:

%s

Rules:
- "schema" is a JSON Schema describing the "extracted" object you produce.
- "extracted.document_type" must be exactly one of: %s.
- Every key of "extracted" must be present. Use null for scalar fields you cannot determine. Use [] for list fields with no entries. Never omit a key.
- "confidence" maps dotted field paths (e.g. "person.name", "skills") to a number from 0.0 (guess) to 1.0 (stated verbatim in the text).
- Include only information present in the text. Do not hallucinate values.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example (resume fragment):
Input: "Jane Smith\njane@example.com\nSenior Go developer, 8 years at Acme Corp."
Output:
{
  "schema": {"type":"object","properties":{"document_type":{"type":"string"},"person":{"type":"object"},"summary":{"type":["string","null"]},"skills":{"type":"array"},"experience":{"type":"array"},"education":{"type":"array"},"highlights":{"type":"array"}}},
  "extracted": {
    "document_type": "resume",
    "person": {"name":"Jane Smith","email":"jane@example.com","phone":null,"location":null},
    "summary": "Senior Go developer with 8 years of experience.",
    "skills": ["Go"],
    "experience": [{"title":"Senior Go developer","company":"Acme Corp","start":null,"end":null,"description":null}],
    "education": [],
    "highlights": ["8 years at Acme Corp"]
  },
  "confidence": {"document_type":0.9,"person.name":1.0,"person.email":1.0,"summary":0.7,"skills":0.8,"experience":0.8}
}

Example (unclassifiable text):
Input: "lorem ipsum dolor sit amet"
Output:
{
  "schema": {"type":"object","properties":{"document_type":{"type":"string"},"person":{"type":["object","null"]},"summary":{"type":["string","null"]},"skills":{"type":"array"},"experience":{"type":"array"},"education":{"type":"array"},"highlights":{"type":"array"}}},
  "extracted": {
    "document_type": "unknown",
    "person": null,
    "summary": null,
    "skills": [],
    "experience": [],
    "education": [],
    "highlights": []
  },
  "confidence": {"document_type":0.5}
}`

// buildExtractionPrompt creates the system prompt with document types embedded.
func buildExtractionPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(ai.DocumentTypes, ", "))
}
