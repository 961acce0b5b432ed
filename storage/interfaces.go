package storage

import (
	"context"

	"github.com/poiesic/docsift/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close closes the repository and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing documents and their
// embeddings. Documents are write-once: there is no update operation.
type DocumentRepository interface {
	Repository

	// AddDocument persists a new document.
	// Generates a new ID from sequence and sets CreatedAt if not already set.
	// Returns the document with ID and timestamp populated.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments retrieves all documents ordered by CreatedAt ascending.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document together with its embeddings and
	// chat messages (cascade). Returns ErrNotFound if it doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// AddEmbedding persists an embedding row for an existing document.
	// The embedding's ID must be set by the caller (content-derived IDs make
	// re-embedding idempotent). Sets CreatedAt if not already set.
	// Returns ErrNotFound if the referenced document doesn't exist.
	AddEmbedding(ctx context.Context, embedding *core.Embedding) (*core.Embedding, error)

	// GetEmbeddings retrieves all embeddings for a document in insertion order.
	// Returns an empty slice for a document with no embeddings.
	GetEmbeddings(ctx context.Context, documentID core.ID) ([]*core.Embedding, error)

	// NearestEmbeddings finds up to k embeddings of the given document closest
	// to the query vector by Euclidean (L2) distance, ascending. Ties are
	// broken by insertion order (stable). A document with no embeddings
	// yields an empty slice, not an error.
	NearestEmbeddings(ctx context.Context, documentID core.ID, vector []float32, k int) ([]*core.SimilarityMatch, error)
}

// ChatRepository provides operations for a document's append-only message log.
// Messages are never updated or deleted individually; removal happens only via
// DocumentRepository.DeleteDocument cascade.
type ChatRepository interface {
	Repository

	// AddChatMessage appends a message to a document's transcript.
	// Generates a new ID from sequence and sets CreatedAt if not already set.
	// Returns the message with ID and timestamp populated.
	AddChatMessage(ctx context.Context, msg *core.ChatMessage) (*core.ChatMessage, error)

	// GetChatMessages retrieves all messages for a document ordered by
	// CreatedAt ascending (insertion order for equal timestamps).
	GetChatMessages(ctx context.Context, documentID core.ID) ([]*core.ChatMessage, error)
}
