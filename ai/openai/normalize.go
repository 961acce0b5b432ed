package openai

import (
	"encoding/json"
	"slices"

	"github.com/poiesic/docsift/ai"
)

// scalarFields are the extracted keys that must be present as explicit nulls
// when unknown. listFields must be present as arrays, empty when unknown.
var (
	scalarFields = []string{"document_type", "person", "summary"}
	listFields   = []string{"skills", "experience", "education", "highlights"}
)

// normalizeExtracted enforces the fixed target shape on a model-produced
// extracted object: every expected key present, unknown scalars as explicit
// null, unknown lists as empty arrays, document_type constrained to the known
// classification values. A JSON null input passes through unchanged.
func normalizeExtracted(raw json.RawMessage) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		// Model returned JSON null; nullable but never absent.
		return json.RawMessage("null"), nil
	}

	for _, key := range scalarFields {
		if v, ok := obj[key]; !ok || len(v) == 0 {
			obj[key] = json.RawMessage("null")
		}
	}

	for _, key := range listFields {
		v, ok := obj[key]
		if !ok || len(v) == 0 || string(v) == "null" {
			obj[key] = json.RawMessage("[]")
		}
	}

	// Constrain the classification to the known set.
	var docType string
	if err := json.Unmarshal(obj["document_type"], &docType); err != nil || !slices.Contains(ai.DocumentTypes, docType) {
		obj["document_type"] = json.RawMessage(`"unknown"`)
	}

	return json.Marshal(obj)
}

// clampConfidence forces every confidence score into [0,1].
// A nil map becomes an empty one so the field is always present.
func clampConfidence(confidence map[string]float64) map[string]float64 {
	if confidence == nil {
		return map[string]float64{}
	}
	for path, score := range confidence {
		if score < 0 {
			confidence[path] = 0
		}
		if score > 1 {
			confidence[path] = 1
		}
	}
	return confidence
}
