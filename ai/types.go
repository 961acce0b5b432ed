package ai

import (
	"encoding/json"
	"errors"
)

// ErrSchemaDiscovery indicates the model produced empty or unparseable output
// for a schema discovery request, after retries.
var ErrSchemaDiscovery = errors.New("schema discovery failed")

// DocumentTypes are the classification values the extractor may assign to a
// document. Anything the model cannot place confidently is "unknown".
var DocumentTypes = []string{
	"resume",
	"cover_letter",
	"invoice",
	"unknown",
}

// ExtractionResult is the outcome of one schema discovery call.
type ExtractionResult struct {
	// Schema is a JSON-Schema-like description of the extracted shape.
	Schema json.RawMessage

	// Extracted is the structured object populated per Schema. Unknown scalar
	// fields are explicit JSON nulls; unknown list fields are empty arrays.
	// The value itself may be JSON null, but never absent.
	Extracted json.RawMessage

	// Confidence maps dotted field paths to scores in [0,1].
	Confidence map[string]float64
}

// Role tags a chat message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to run a named tool with a raw JSON
// argument payload.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolResult carries the output of a locally executed tool back to the model.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
}

// Message is one role-tagged entry in a conversation sent to a ChatModel.
// ToolCalls is set only on assistant messages that requested tools;
// ToolResults is set only on tool messages.
type Message struct {
	Role        Role
	Content     string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolDefinition describes one tool offered to the model.
// Parameters is a JSON-Schema object describing the argument payload.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ChatResponse is the model's reply to a Complete call.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall // non-empty when the model requests tool execution
}
