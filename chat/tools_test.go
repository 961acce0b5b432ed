package chat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/stretchr/testify/assert"
)

var sampleExtracted = json.RawMessage(`{
	"document_type": "resume",
	"person": "Jane Smith",
	"summary": null,
	"skills": ["Go", "SQL"],
	"experience": [{"company": "Acme", "title": "Engineer"}]
}`)

func TestFetchExtractedField(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"scalar", "person", `"Jane Smith"`},
		{"explicit null value", "summary", "null"},
		{"list element", "skills.1", `"SQL"`},
		{"nested object field", "experience.0.company", `"Acme"`},
		{"missing key", "salary", "null"},
		{"path through scalar", "person.name", "null"},
		{"index out of range", "skills.5", "null"},
		{"non-numeric index", "skills.first", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fetchExtractedField(sampleExtracted, tt.path))
		})
	}
}

func TestFetchExtractedField_NoPathReturnsWholeObject(t *testing.T) {
	result := fetchExtractedField(sampleExtracted, "")
	assert.JSONEq(t, string(sampleExtracted), result)
}

func TestFetchExtractedField_EmptyExtracted(t *testing.T) {
	assert.Equal(t, "null", fetchExtractedField(nil, "person"))
	assert.Equal(t, "null", fetchExtractedField(nil, ""))
}

func TestSearchDocumentText(t *testing.T) {
	text := "Jane Smith\nSenior Engineer at Acme\nSkills: Go, SQL\nEducation: BSc\nContact: jane@example.com"

	t.Run("case-insensitive match", func(t *testing.T) {
		assert.Equal(t, "Skills: Go, SQL", searchDocumentText(text, "SKILLS"))
	})

	t.Run("multiple matching lines in order", func(t *testing.T) {
		result := searchDocumentText(text, "e")
		lines := strings.Split(result, "\n")
		assert.Equal(t, "Jane Smith", lines[0])
	})

	t.Run("no match marker", func(t *testing.T) {
		assert.Equal(t, noMatchMarker, searchDocumentText(text, "kubernetes"))
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Equal(t, noMatchMarker, searchDocumentText(text, ""))
	})

	t.Run("at most five lines", func(t *testing.T) {
		many := strings.Repeat("match here\n", 10)
		result := searchDocumentText(many, "match")
		assert.Len(t, strings.Split(result, "\n"), maxSearchLines)
	})

	t.Run("carriage returns stripped", func(t *testing.T) {
		assert.Equal(t, "line one", searchDocumentText("line one\r\nline two", "one"))
	})
}

func TestExecuteToolCall(t *testing.T) {
	doc := &core.Document{
		Text:      "Jane Smith\nSkills: Go",
		Extracted: sampleExtracted,
	}

	t.Run("fetch with path", func(t *testing.T) {
		result := executeToolCall(doc, ai.ToolCall{
			Name:      toolFetchExtractedField,
			Arguments: `{"path":"person"}`,
		})
		assert.Equal(t, `"Jane Smith"`, result)
	})

	t.Run("fetch without arguments", func(t *testing.T) {
		result := executeToolCall(doc, ai.ToolCall{Name: toolFetchExtractedField})
		assert.JSONEq(t, string(sampleExtracted), result)
	})

	t.Run("search", func(t *testing.T) {
		result := executeToolCall(doc, ai.ToolCall{
			Name:      toolSearchDocumentText,
			Arguments: `{"query":"go"}`,
		})
		assert.Equal(t, "Skills: Go", result)
	})

	t.Run("unknown tool", func(t *testing.T) {
		result := executeToolCall(doc, ai.ToolCall{Name: "delete_document"})
		assert.Contains(t, result, "unknown tool")
	})

	t.Run("malformed arguments", func(t *testing.T) {
		result := executeToolCall(doc, ai.ToolCall{
			Name:      toolSearchDocumentText,
			Arguments: `{"query":`,
		})
		assert.Contains(t, result, "invalid arguments")
	})
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 100))

	long := strings.Repeat("a", 150)
	result := excerpt(long, 100)
	assert.True(t, strings.HasSuffix(result, truncationMarker))
	assert.Equal(t, strings.Repeat("a", 100), strings.TrimSuffix(result, truncationMarker))
}
