package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// DefaultK is the number of matches retrieved when callers pass k <= 0.
const DefaultK = 3

// Retriever performs document-scoped similarity search.
type Retriever struct {
	docs     storage.DocumentRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(docs storage.DocumentRepository, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		docs:     docs,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve embeds the query and returns up to k of the document's embeddings
// ranked by ascending Euclidean distance. A document with no embeddings
// yields an empty slice, not an error, so callers can fall back to the raw
// document text.
func (r *Retriever) Retrieve(ctx context.Context, documentID core.ID, query string, k int) ([]*core.SimilarityMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = DefaultK
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := r.docs.NearestEmbeddings(ctx, documentID, vector, k)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("retrieval complete", "document_id", documentID, "matches", len(matches), "k", k)
	return matches, nil
}
