package ingest

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrExtraction is returned when text extraction from the uploaded bytes fails.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding marks a failed embedding attempt. The document is still
	// persisted; callers see this on Result.EmbeddingErr, never as the
	// top-level error.
	ErrEmbedding = errors.New("embedding failed")
)
