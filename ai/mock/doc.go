// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.FieldExtractor,
// ai.ChatModel and ai.Provider for use in unit tests. The mocks allow tests to
// run without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Scripted chat responses
//	chat := mock.NewMockChatModel(
//	    &ai.ChatResponse{ToolCalls: []ai.ToolCall{{Name: "search_document_text"}}},
//	    &ai.ChatResponse{Content: "final answer"},
//	)
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockFieldExtractor: Returns a shape-complete "unknown" classification
//   - MockChatModel: Returns scripted responses in order
//   - MockProvider: Aggregates the three mocks
package mock
