package openai

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/poiesic/docsift/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs,
// including tool calling.
type ChatModel struct {
	client llms.Model
	logger *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken("none"),
		openai.WithModel(config.CompletionModel),
		openai.WithHTTPClient(&http.Client{Timeout: config.RequestTimeout}),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client: client,
		logger: slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Complete sends the conversation to the completion service. When tools are
// supplied the model decides itself whether to request calls (automatic tool
// choice); an empty tools slice means no tool manifest is sent at all.
func (c *ChatModel) Complete(ctx context.Context, messages []ai.Message, tools []ai.ToolDefinition) (*ai.ChatResponse, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, toMessageContent(msg))
	}

	opts := []llms.CallOption{llms.WithTemperature(0.2)}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(toLLMTools(tools)))
	}

	response, err := c.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return nil, err
	}

	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model")
		return &ai.ChatResponse{}, nil
	}

	choice := response.Choices[0]
	result := &ai.ChatResponse{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		result.ToolCalls = append(result.ToolCalls, ai.ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}

	c.logger.Debug("chat completion finished",
		"contentLength", len(result.Content),
		"toolCalls", len(result.ToolCalls))

	return result, nil
}

// toMessageContent converts an ai.Message to the langchaingo wire form.
func toMessageContent(msg ai.Message) llms.MessageContent {
	mc := llms.MessageContent{Role: toLLMRole(msg.Role)}

	if msg.Content != "" {
		mc.Parts = append(mc.Parts, llms.TextPart(msg.Content))
	}

	for _, call := range msg.ToolCalls {
		mc.Parts = append(mc.Parts, llms.ToolCall{
			ID:   call.ID,
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}

	for _, result := range msg.ToolResults {
		mc.Parts = append(mc.Parts, llms.ToolCallResponse{
			ToolCallID: result.CallID,
			Name:       result.Name,
			Content:    result.Content,
		})
	}

	return mc
}

func toLLMRole(role ai.Role) llms.ChatMessageType {
	switch role {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI
	case ai.RoleTool:
		return llms.ChatMessageTypeTool
	default:
		return llms.ChatMessageTypeHuman
	}
}

func toLLMTools(tools []ai.ToolDefinition) []llms.Tool {
	converted := make([]llms.Tool, 0, len(tools))
	for _, tool := range tools {
		converted = append(converted, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return converted
}
