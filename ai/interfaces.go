package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// FieldExtractor discovers a schema for unstructured document text and
// extracts structured field values with per-field confidence.
// Implementations must be thread-safe for concurrent use.
type FieldExtractor interface {
	// ExtractFields analyzes document text and returns the discovered schema,
	// the extracted structured object, and a confidence score per field path.
	// The extracted object always contains every expected key: unknown scalar
	// fields are explicit nulls and unknown list fields are empty arrays.
	// Returns ErrSchemaDiscovery (wrapped) if the model output cannot be
	// parsed after retries.
	ExtractFields(ctx context.Context, text string) (*ExtractionResult, error)
}

// ChatModel produces one assistant response for a role-tagged conversation,
// optionally requesting calls to the supplied tools.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete sends the conversation to the completion service and returns
	// the model's response. When tools is non-empty the model may request
	// tool calls instead of (or alongside) textual content; executing them
	// and continuing the exchange is the caller's responsibility.
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*ChatResponse, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, FieldExtractor and ChatModel instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// FieldExtractor returns the schema discovery and field extraction service.
	// The returned FieldExtractor is safe for concurrent use.
	FieldExtractor() FieldExtractor

	// ChatModel returns the conversational completion service.
	// The returned ChatModel is safe for concurrent use.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
