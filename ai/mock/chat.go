package mock

import (
	"context"

	"github.com/poiesic/docsift/ai"
)

// MockChatModel is a test double for ai.ChatModel.
// Responses are consumed from a script in order; once the script is
// exhausted a fixed fallback response is returned. Custom behavior can be
// injected via CompleteFunc.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, messages []ai.Message, tools []ai.ToolDefinition) (*ai.ChatResponse, error)

	// Script is the ordered list of responses to return.
	Script []*ai.ChatResponse

	callCount int
	calls     []CompleteCall
}

// CompleteCall records the arguments of one Complete invocation.
type CompleteCall struct {
	Messages []ai.Message
	Tools    []ai.ToolDefinition
}

// NewMockChatModel creates a mock chat model returning the given responses
// in order. Note: Returns concrete type to allow test assertions.
func NewMockChatModel(script ...*ai.ChatResponse) *MockChatModel {
	return &MockChatModel{Script: script}
}

// Complete returns the next scripted response.
func (m *MockChatModel) Complete(ctx context.Context, messages []ai.Message, tools []ai.ToolDefinition) (*ai.ChatResponse, error) {
	m.calls = append(m.calls, CompleteCall{Messages: messages, Tools: tools})
	idx := m.callCount
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages, tools)
	}

	if idx < len(m.Script) {
		return m.Script[idx], nil
	}

	return &ai.ChatResponse{Content: "mock response"}, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// Calls returns the recorded arguments of every Complete invocation.
func (m *MockChatModel) Calls() []CompleteCall {
	return m.calls
}

// Reset clears recorded calls, the script, and custom functions.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.calls = nil
	m.Script = nil
	m.CompleteFunc = nil
}
