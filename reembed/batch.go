package reembed

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// BatchResult counts the outcomes within one processed batch.
type BatchResult struct {
	Processed      int
	SkippedTrivial int
	Failed         int
}

// BatchProcessor generates fresh embeddings for batches of documents.
type BatchProcessor struct {
	repo           storage.DocumentRepository
	embedder       ai.Embedder
	minEmbedChars  int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.DocumentRepository, embedder ai.Embedder, minEmbedChars, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		minEmbedChars:  minEmbedChars,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         slog.Default(),
	}
}

// Process embeds a batch of documents and persists the new embedding rows.
// Documents with trivial text are skipped. A failed embedding call fails the
// whole batch's eligible documents; per-document persistence failures are
// counted individually and do not stop the batch.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) *BatchResult {
	result := &BatchResult{}
	if len(docs) == 0 {
		return result
	}

	eligible := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if utf8.RuneCountInString(doc.Text) < bp.minEmbedChars {
			result.SkippedTrivial++
			continue
		}
		eligible = append(eligible, doc)
	}
	if len(eligible) == 0 {
		return result
	}

	texts := make([]string, len(eligible))
	for i, doc := range eligible {
		texts[i] = doc.Text
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		bp.logger.Error("batch embedding failed", "documents", len(eligible), "err", err)
		result.Failed += len(eligible)
		return result
	}

	if len(embeddings) != len(eligible) {
		bp.logger.Error("embedding count mismatch",
			"err", fmt.Errorf("expected %d, got %d", len(eligible), len(embeddings)))
		result.Failed += len(eligible)
		return result
	}

	for i, doc := range eligible {
		_, err := bp.repo.AddEmbedding(ctx, &core.Embedding{
			Id:         core.EmbeddingID(doc.Id, doc.Text),
			DocumentId: doc.Id,
			Vector:     embeddings[i],
		})
		if err != nil {
			bp.logger.Error("failed to persist embedding", "document_id", doc.Id, "err", err)
			result.Failed++
			continue
		}
		result.Processed++
	}

	return result
}
