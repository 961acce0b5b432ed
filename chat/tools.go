package chat

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
)

const (
	toolFetchExtractedField = "fetch_extracted_field"
	toolSearchDocumentText  = "search_document_text"

	// maxSearchLines bounds how many matching lines a text search returns.
	maxSearchLines = 5

	// noMatchMarker is returned when a text search finds nothing, so the
	// model sees an explicit negative instead of an empty string.
	noMatchMarker = "[NO MATCH]"
)

// toolDefinitions describes the two local tools offered on the first
// completion call of every turn.
func toolDefinitions() []ai.ToolDefinition {
	return []ai.ToolDefinition{
		{
			Name:        toolFetchExtractedField,
			Description: "Fetch a value from the document's extracted fields. Pass a dotted path like \"person.name\" or \"skills.0\" to select a nested value; omit the path to get the full extracted object. Returns JSON, or null when the path does not resolve.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Dotted path into the extracted object. Optional.",
					},
				},
			},
		},
		{
			Name:        toolSearchDocumentText,
			Description: "Case-insensitive substring search over the document's full text. Returns up to 5 matching lines, or " + noMatchMarker + " when nothing matches.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Substring to look for.",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

// executeToolCall runs one requested tool locally and deterministically
// against the document. Results are always valid tool output text: bad
// arguments or unknown tools produce an explanatory string, never an error,
// so the second completion call can proceed.
func executeToolCall(doc *core.Document, call ai.ToolCall) string {
	switch call.Name {
	case toolFetchExtractedField:
		var args struct {
			Path string `json:"path"`
		}
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				return "invalid arguments: " + err.Error()
			}
		}
		return fetchExtractedField(doc.Extracted, args.Path)
	case toolSearchDocumentText:
		var args struct {
			Query string `json:"query"`
		}
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				return "invalid arguments: " + err.Error()
			}
		}
		return searchDocumentText(doc.Text, args.Query)
	default:
		return "unknown tool: " + call.Name
	}
}

// fetchExtractedField resolves a dotted path against the extracted JSON.
// An empty path returns the whole object; an unresolvable path returns the
// JSON literal null.
func fetchExtractedField(extracted json.RawMessage, path string) string {
	if len(extracted) == 0 {
		return "null"
	}
	if path == "" {
		return string(extracted)
	}

	var value any
	if err := json.Unmarshal(extracted, &value); err != nil {
		return "null"
	}

	for _, segment := range strings.Split(path, ".") {
		switch node := value.(type) {
		case map[string]any:
			child, ok := node[segment]
			if !ok {
				return "null"
			}
			value = child
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return "null"
			}
			value = node[index]
		default:
			return "null"
		}
	}

	out, err := json.Marshal(value)
	if err != nil {
		return "null"
	}
	return string(out)
}

// searchDocumentText finds lines containing the query, case-insensitively.
// At most maxSearchLines lines come back, in document order.
func searchDocumentText(text, query string) string {
	if query == "" {
		return noMatchMarker
	}

	needle := strings.ToLower(query)
	var matches []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.Contains(strings.ToLower(line), needle) {
			matches = append(matches, line)
			if len(matches) == maxSearchLines {
				break
			}
		}
	}

	if len(matches) == 0 {
		return noMatchMarker
	}
	return strings.Join(matches, "\n")
}
