package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/search"
	"github.com/poiesic/docsift/storage"
)

const (
	// DefaultTopK is how many similar embeddings are retrieved per turn.
	DefaultTopK = 3

	// DefaultExcerptChars bounds the context excerpt in the system prompt.
	DefaultExcerptChars = 2000
)

// Turn is one message of the caller-supplied conversation history.
type Turn struct {
	Role    core.MessageRole
	Content string
}

// Orchestrator runs document-scoped conversation turns.
type Orchestrator struct {
	docs         storage.DocumentRepository
	msgs         storage.ChatRepository
	retriever    *search.Retriever
	model        ai.ChatModel
	topK         int
	excerptChars int
	logger       *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithTopK overrides how many embeddings are retrieved for context.
func WithTopK(k int) Option {
	return func(o *Orchestrator) error {
		if k < 1 {
			return fmt.Errorf("top k must be positive, got %d", k)
		}
		o.topK = k
		return nil
	}
}

// WithExcerptChars overrides the context excerpt budget.
func WithExcerptChars(limit int) Option {
	return func(o *Orchestrator) error {
		if limit < 1 {
			return fmt.Errorf("excerpt chars must be positive, got %d", limit)
		}
		o.excerptChars = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a new conversation orchestrator.
func NewOrchestrator(
	docs storage.DocumentRepository,
	msgs storage.ChatRepository,
	retriever *search.Retriever,
	model ai.ChatModel,
	opts ...Option,
) (*Orchestrator, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if msgs == nil {
		return nil, ErrChatRepositoryRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if model == nil {
		return nil, ErrChatModelRequired
	}

	o := &Orchestrator{
		docs:         docs,
		msgs:         msgs,
		retriever:    retriever,
		model:        model,
		topK:         DefaultTopK,
		excerptChars: DefaultExcerptChars,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Respond runs one conversation turn. The supplied messages are the full
// history with the new user message last. The user message is persisted
// before any external call; if the turn fails later, it stays recorded and
// the caller can retry for a reply. On success exactly one assistant message
// is persisted and returned, carrying the record of any tool calls made.
func (o *Orchestrator) Respond(ctx context.Context, documentID core.ID, messages []Turn) (*core.ChatMessage, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, ErrNoUserMessage)
	}
	last := messages[len(messages)-1]
	if last.Role != core.RoleUser {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, ErrNoUserMessage)
	}

	doc, err := o.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With("document_id", documentID)

	// Durability before any external call
	userMsg := &core.ChatMessage{
		DocumentId: documentID,
		Role:       core.RoleUser,
		Content:    last.Content,
	}
	if err := core.ValidateChatMessage(userMsg); err != nil {
		return nil, err
	}
	if _, err := o.msgs.AddChatMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	matches, err := o.retriever.Retrieve(ctx, documentID, last.Content, o.topK)
	if err != nil {
		return nil, err
	}
	logger.Debug("context retrieved", "matches", len(matches))

	// With whole-document embeddings the retrieved rows and the fallback
	// both resolve to the document text; matches still tell us whether
	// semantic search found anything relevant.
	conversation := o.buildConversation(doc, messages)

	response, err := o.model.Complete(ctx, conversation, toolDefinitions())
	if err != nil {
		return nil, err
	}

	// Stays nil when the model makes no tool calls; readers of the stored
	// message rely on that, not on an empty slice.
	var toolRecord []core.ToolCall
	final := response

	if len(response.ToolCalls) > 0 {
		logger.Debug("executing tool calls", "count", len(response.ToolCalls))

		results := make([]ai.ToolResult, 0, len(response.ToolCalls))
		for _, call := range response.ToolCalls {
			toolRecord = append(toolRecord, core.ToolCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			})
			results = append(results, ai.ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Content: executeToolCall(doc, call),
			})
		}

		conversation = append(conversation, ai.Message{
			Role:      ai.RoleAssistant,
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})
		conversation = append(conversation, ai.Message{
			Role:        ai.RoleTool,
			ToolResults: results,
		})

		// No tools offered on the second call: the exchange is bounded to
		// two phases, not an open loop.
		final, err = o.model.Complete(ctx, conversation, nil)
		if err != nil {
			return nil, err
		}
	}

	assistantMsg := &core.ChatMessage{
		DocumentId: documentID,
		Role:       core.RoleAssistant,
		Content:    final.Content,
		ToolCalls:  toolRecord,
	}
	// A model can legally return no choices; an empty reply must not be
	// persisted. The user message above stays recorded for a retry.
	if err := core.ValidateChatMessage(assistantMsg); err != nil {
		return nil, err
	}
	if _, err := o.msgs.AddChatMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}

	logger.Info("turn complete", "tool_calls", len(toolRecord))
	return assistantMsg, nil
}

// Transcript returns the document's ordered message log.
func (o *Orchestrator) Transcript(ctx context.Context, documentID core.ID) ([]*core.ChatMessage, error) {
	if _, err := o.docs.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return o.msgs.GetChatMessages(ctx, documentID)
}

// buildConversation maps the caller history onto provider messages behind a
// freshly assembled system prompt.
func (o *Orchestrator) buildConversation(doc *core.Document, messages []Turn) []ai.Message {
	conversation := make([]ai.Message, 0, len(messages)+1)
	conversation = append(conversation, ai.Message{
		Role:    ai.RoleSystem,
		Content: buildSystemPrompt(doc.Text, doc.Extracted, doc.Schema, o.excerptChars),
	})
	for _, turn := range messages {
		conversation = append(conversation, ai.Message{
			Role:    toProviderRole(turn.Role),
			Content: turn.Content,
		})
	}
	return conversation
}

// toProviderRole maps a persisted message role onto the provider's role.
func toProviderRole(role core.MessageRole) ai.Role {
	switch role {
	case core.RoleAssistant:
		return ai.RoleAssistant
	case core.RoleSystem:
		return ai.RoleSystem
	default:
		return ai.RoleUser
	}
}
