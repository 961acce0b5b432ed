package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExtracted(t *testing.T) {
	t.Run("missing list fields become empty arrays", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type":"resume","person":null,"summary":null}`)

		normalized, err := normalizeExtracted(raw)
		require.NoError(t, err)

		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(normalized, &obj))

		for _, key := range []string{"skills", "experience", "education", "highlights"} {
			require.Contains(t, obj, key)
			assert.JSONEq(t, `[]`, string(obj[key]), "field %s", key)
		}
	})

	t.Run("missing scalar fields become explicit nulls", func(t *testing.T) {
		raw := json.RawMessage(`{"skills":["go"]}`)

		normalized, err := normalizeExtracted(raw)
		require.NoError(t, err)

		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(normalized, &obj))

		require.Contains(t, obj, "person")
		require.Contains(t, obj, "summary")
		assert.Equal(t, "null", string(obj["person"]))
		assert.Equal(t, "null", string(obj["summary"]))
	})

	t.Run("null list fields become empty arrays", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type":"invoice","skills":null}`)

		normalized, err := normalizeExtracted(raw)
		require.NoError(t, err)

		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(normalized, &obj))
		assert.JSONEq(t, `[]`, string(obj["skills"]))
	})

	t.Run("unknown document type is coerced", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type":"memo"}`)

		normalized, err := normalizeExtracted(raw)
		require.NoError(t, err)

		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(normalized, &obj))
		assert.Equal(t, `"unknown"`, string(obj["document_type"]))
	})

	t.Run("known fields pass through", func(t *testing.T) {
		raw := json.RawMessage(`{"document_type":"cover_letter","person":{"name":"Jane"},"summary":"hi","skills":["go","sql"],"experience":[],"education":[],"highlights":["x"]}`)

		normalized, err := normalizeExtracted(raw)
		require.NoError(t, err)

		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(normalized, &obj))
		assert.Equal(t, `"cover_letter"`, string(obj["document_type"]))
		assert.JSONEq(t, `{"name":"Jane"}`, string(obj["person"]))
		assert.JSONEq(t, `["go","sql"]`, string(obj["skills"]))
	})

	t.Run("json null passes through", func(t *testing.T) {
		normalized, err := normalizeExtracted(json.RawMessage(`null`))
		require.NoError(t, err)
		assert.Equal(t, "null", string(normalized))
	})

	t.Run("non-object input errors", func(t *testing.T) {
		_, err := normalizeExtracted(json.RawMessage(`"just a string"`))
		assert.Error(t, err)
	})
}

func TestClampConfidence(t *testing.T) {
	clamped := clampConfidence(map[string]float64{
		"person.name": 1.4,
		"summary":     -0.2,
		"skills":      0.75,
	})

	assert.Equal(t, 1.0, clamped["person.name"])
	assert.Equal(t, 0.0, clamped["summary"])
	assert.Equal(t, 0.75, clamped["skills"])
}

func TestClampConfidence_Nil(t *testing.T) {
	clamped := clampConfidence(nil)
	require.NotNil(t, clamped)
	assert.Empty(t, clamped)
}

func TestRepairJSON_TrailingCommas(t *testing.T) {
	in := `{"skills":["go","sql",],"person":{"name":"Jane",},}`
	out := repairJSON(in)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
}

func TestRepairJSON_UnquotedKey(t *testing.T) {
	in := `{"document_type":"resume", summary": null}`
	out := repairJSON(in)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	assert.Contains(t, obj, "summary")
}

func TestRepairJSON_PreservesStrings(t *testing.T) {
	in := `{"summary":"worked on a, b, and c,"}`
	out := repairJSON(in)
	assert.Equal(t, in, out)
}
