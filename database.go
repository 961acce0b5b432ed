// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package docsift

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/ai/openai"
	"github.com/poiesic/docsift/chat"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/ingest"
	"github.com/poiesic/docsift/reembed"
	"github.com/poiesic/docsift/search"
	"github.com/poiesic/docsift/storage"
	"github.com/poiesic/docsift/storage/badger"
)

// Database bundles storage, the AI provider, the ingestion pipeline, and the
// conversation orchestrator behind the boundary operations callers use.
type Database struct {
	backend      *badger.Backend
	docRepo      storage.DocumentRepository
	chatRepo     storage.ChatRepository
	provider     ai.Provider
	pipeline     *ingest.Pipeline
	orchestrator *chat.Orchestrator
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig overrides the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider, bypassing the OpenAI
// client construction. Intended for tests.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage opens the backend in memory instead of on disk.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create document repository
	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create chat repository
	chatRepo, err := badger.NewChatRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chatRepo.Close()
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	db := &Database{
		backend:  backend,
		docRepo:  docRepo,
		chatRepo: chatRepo,
		provider: provider,
		logger:   slog.Default(),
	}

	db.pipeline, err = ingest.NewPipeline(docRepo, provider)
	if err != nil {
		db.Close()
		return nil, err
	}

	retriever, err := search.NewRetriever(docRepo, provider.Embedder())
	if err != nil {
		db.Close()
		return nil, err
	}

	db.orchestrator, err = chat.NewOrchestrator(docRepo, chatRepo, retriever, provider.ChatModel())
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.chatRepo.Close(); err != nil {
		db.logger.Error("error closing chat repository", "err", err)
		return err
	}
	if err := db.docRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Ingest runs uploaded bytes through the pipeline and persists the document.
func (db *Database) Ingest(ctx context.Context, data []byte, mediaType, filename string) (*ingest.Result, error) {
	return db.pipeline.Ingest(ctx, data, mediaType, filename)
}

// Respond runs one conversation turn against a document. The last element of
// messages must be the new user message.
func (db *Database) Respond(ctx context.Context, documentID core.ID, messages []chat.Turn) (*core.ChatMessage, error) {
	return db.orchestrator.Respond(ctx, documentID, messages)
}

// Transcript returns a document's ordered message log.
func (db *Database) Transcript(ctx context.Context, documentID core.ID) ([]*core.ChatMessage, error) {
	return db.orchestrator.Transcript(ctx, documentID)
}

// GetDocument retrieves a document by ID.
func (db *Database) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	return db.docRepo.GetDocument(ctx, id)
}

// ListDocuments returns all documents ordered by creation time.
func (db *Database) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	return db.docRepo.ListDocuments(ctx)
}

// DeleteDocument removes a document and everything attached to it.
func (db *Database) DeleteDocument(ctx context.Context, id core.ID) error {
	return db.docRepo.DeleteDocument(ctx, id)
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.docRepo
}

func (db *Database) ChatRepository() storage.ChatRepository {
	return db.chatRepo
}

// NewReembedder builds a reembedder over this database's documents.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.docRepo, db.provider.Embedder(), config, progress)
}
