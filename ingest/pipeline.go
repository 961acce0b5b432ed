package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

const (
	// DefaultMaxExtractChars caps how much text is sent to the completion
	// service for schema discovery.
	DefaultMaxExtractChars = 40000

	// DefaultMinEmbedChars is the minimum redacted text length worth
	// embedding. Shorter texts skip the embedding stage without error.
	DefaultMinEmbedChars = 20
)

// Pipeline orchestrates document ingestion: extract, sanitize, redact,
// discover schema, persist, embed. Stages are strictly ordered and each runs
// at most one external call.
type Pipeline struct {
	docs            storage.DocumentRepository
	extractor       ai.FieldExtractor
	embedder        ai.Embedder
	maxExtractChars int
	minEmbedChars   int
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithMaxExtractChars overrides the schema discovery character budget.
func WithMaxExtractChars(limit int) Option {
	return func(p *Pipeline) error {
		if limit < 1 {
			return fmt.Errorf("max extract chars must be positive, got %d", limit)
		}
		p.maxExtractChars = limit
		return nil
	}
}

// WithMinEmbedChars overrides the minimum text length for embedding.
func WithMinEmbedChars(limit int) Option {
	return func(p *Pipeline) error {
		if limit < 0 {
			return fmt.Errorf("min embed chars must be non-negative, got %d", limit)
		}
		p.minEmbedChars = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(docs storage.DocumentRepository, provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Pipeline{
		docs:            docs,
		extractor:       provider.FieldExtractor(),
		embedder:        provider.Embedder(),
		maxExtractChars: DefaultMaxExtractChars,
		minEmbedChars:   DefaultMinEmbedChars,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Result reports the outcome of a single ingestion.
type Result struct {
	// Document is the persisted record, always present on success.
	Document *core.Document

	// Embedded is true when an embedding row was written.
	Embedded bool

	// EmbeddingErr holds the embedding failure, if any. The document was
	// persisted regardless; it just has no vector until re-embedded.
	EmbeddingErr error
}

// Ingest runs uploaded bytes through the full pipeline and persists the
// resulting document. Failures before persistence abort with nothing stored.
// An embedding failure is reported on the Result, not as an error.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, mediaType, filename string) (*Result, error) {
	logger := p.logger.With("filename", filename)
	logger.Info("ingestion started", "stage", StageUploaded, "bytes", len(data), "media_type", mediaType)

	logger.Debug("stage transition", "stage", StageExtracting)
	text, err := ExtractText(ctx, data, mediaType, filename)
	if err != nil {
		logger.Error("ingestion failed", "stage", StageError, "failed_stage", StageExtracting, "err", err)
		return nil, err
	}

	logger.Debug("stage transition", "stage", StageSanitizing)
	text = Sanitize(text)

	logger.Debug("stage transition", "stage", StageRedacting)
	text = Redact(text)

	logger.Debug("stage transition", "stage", StageSchemaDiscovery)
	truncated := truncateChars(text, p.maxExtractChars)
	extraction, err := p.extractor.ExtractFields(ctx, truncated)
	if err != nil {
		logger.Error("ingestion failed", "stage", StageError, "failed_stage", StageSchemaDiscovery, "err", err)
		return nil, err
	}

	logger.Debug("stage transition", "stage", StagePersisting)
	doc := &core.Document{
		Filename:   filename,
		Text:       text,
		Schema:     extraction.Schema,
		Extracted:  extraction.Extracted,
		Confidence: extraction.Confidence,
		Status:     core.StatusReviewRequired,
	}
	if err := core.ValidateDocument(doc); err != nil {
		logger.Error("ingestion failed", "stage", StageError, "failed_stage", StagePersisting, "err", err)
		return nil, err
	}
	doc, err = p.docs.AddDocument(ctx, doc)
	if err != nil {
		logger.Error("ingestion failed", "stage", StageError, "failed_stage", StagePersisting, "err", err)
		return nil, err
	}

	result := &Result{Document: doc}

	if utf8.RuneCountInString(text) < p.minEmbedChars {
		logger.Info("ingestion complete, embedding skipped",
			"document_id", doc.Id, "status", doc.Status, "text_chars", utf8.RuneCountInString(text))
		return result, nil
	}

	logger.Debug("stage transition", "stage", StageEmbedding)
	if embErr := p.embed(ctx, doc, text); embErr != nil {
		logger.Warn("embedding failed, document persisted without vector",
			"document_id", doc.Id, "err", embErr)
		result.EmbeddingErr = fmt.Errorf("%w: %w", ErrEmbedding, embErr)
		return result, nil
	}
	result.Embedded = true

	logger.Info("ingestion complete", "document_id", doc.Id, "status", doc.Status)
	return result, nil
}

// embed generates a vector for the full redacted text and persists one
// embedding row keyed by a content-derived ID.
func (p *Pipeline) embed(ctx context.Context, doc *core.Document, text string) error {
	vector, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		return err
	}

	_, err = p.docs.AddEmbedding(ctx, &core.Embedding{
		Id:         core.EmbeddingID(doc.Id, text),
		DocumentId: doc.Id,
		Vector:     vector,
	})
	return err
}

// truncateChars bounds text to limit characters without splitting a rune.
func truncateChars(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
