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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/docsift"
	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/chat"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/reembed"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docsift",
		Usage: "Document ingestion and grounded question answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a document file",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "media-type",
						Usage: "Media type of the file (inferred from extension if omitted)",
					},
				}, aiFlags()...),
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about an ingested document",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					docFlag(),
				}, aiFlags()...),
			},
			{
				Name:   "transcript",
				Usage:  "Print the conversation history for a document",
				Action: transcriptCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					docFlag(),
				}, aiFlags()...),
			},
			{
				Name:   "list",
				Usage:  "List ingested documents in creation order",
				Action: listCommand,
				Flags:  append([]cli.Flag{dbFlag()}, aiFlags()...),
			},
			{
				Name:   "delete",
				Usage:  "Delete a document and all its embeddings and chat messages",
				Action: deleteCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					docFlag(),
				}, aiFlags()...),
			},
			{
				Name:   "reembed",
				Usage:  "Recompute embeddings for all stored documents",
				Action: reembedCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent batch workers (0 = half the CPUs)",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}, aiFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// dbFlag is shared by every command; each command opens its own database.
func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func docFlag() cli.Flag {
	return &cli.Uint64Flag{
		Name:     "doc",
		Usage:    "Document ID",
		Required: true,
	}
}

// aiFlags configures the OpenAI-compatible backends. Values can come from
// the environment (and therefore a .env file) as well as the command line.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "OpenAI-compatible service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"DOCSIFT_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "text-embedding-3-small",
			EnvVars: []string{"DOCSIFT_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "completion-model",
			Usage:   "Completion model name for extraction and chat",
			Value:   "gpt-4o-mini",
			EnvVars: []string{"DOCSIFT_COMPLETION_MODEL"},
		},
		&cli.IntFlag{
			Name:    "embedding-dimensions",
			Usage:   "Vector dimensionality for stored embeddings",
			Value:   1536,
			EnvVars: []string{"DOCSIFT_EMBEDDING_DIMENSIONS"},
		},
		&cli.DurationFlag{
			Name:    "request-timeout",
			Usage:   "Timeout for each model service call",
			Value:   60 * time.Second,
			EnvVars: []string{"DOCSIFT_REQUEST_TIMEOUT"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Overall deadline for the command",
			Value:   5 * time.Minute,
			EnvVars: []string{"DOCSIFT_TIMEOUT"},
		},
	}
}

// commandContext bounds a command with the --timeout deadline so a stalled
// service or store cannot hang the process.
func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Duration("timeout"))
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionModel(c.String("completion-model")),
		ai.WithEmbeddingDimensions(c.Int("embedding-dimensions")),
		ai.WithRequestTimeout(c.Duration("request-timeout")),
	)
}

func openDatabase(c *cli.Context) (*docsift.Database, error) {
	cfg := aiConfigFromFlags(c)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	db, err := docsift.NewDatabase(c.String("db"), docsift.WithAIConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// inferMediaType resolves a media type from the explicit flag, the file
// extension, or content sniffing, in that order.
func inferMediaType(explicit, path string, data []byte) string {
	if explicit != "" {
		return explicit
	}
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	mediaType := inferMediaType(c.String("media-type"), path, data)

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	result, err := db.Ingest(ctx, data, mediaType, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested document %d (%s) status=%s\n",
		result.Document.Id, result.Document.Filename, result.Document.Status)
	if result.EmbeddingErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: document stored but embedding failed: %v\n", result.EmbeddingErr)
		fmt.Fprintln(os.Stderr, "Run 'docsift reembed' to retry.")
	} else if !result.Embedded {
		fmt.Println("Text too short to embed; document stored without a vector.")
	}
	return nil
}

// transcriptTurns converts stored chat messages into conversation turns,
// preserving order. Messages with roles the model API does not accept as
// input history (system) are skipped.
func transcriptTurns(messages []*core.ChatMessage) []chat.Turn {
	turns := make([]chat.Turn, 0, len(messages))
	for _, msg := range messages {
		if msg.Role != core.RoleUser && msg.Role != core.RoleAssistant {
			continue
		}
		turns = append(turns, chat.Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

func askCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one question argument")
	}
	question := c.Args().First()
	documentID := core.ID(c.Uint64("doc"))

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	history, err := db.Transcript(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	turns := append(transcriptTurns(history), chat.Turn{Role: core.RoleUser, Content: question})

	reply, err := db.Respond(ctx, documentID, turns)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	fmt.Println(reply.Content)
	return nil
}

func transcriptCommand(c *cli.Context) error {
	documentID := core.ID(c.Uint64("doc"))

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	messages, err := db.Transcript(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	if len(messages) == 0 {
		fmt.Println("No messages.")
		return nil
	}

	for _, msg := range messages {
		fmt.Printf("[%s] %s: %s\n",
			msg.CreatedAt.Format(time.RFC3339), msg.Role, msg.Content)
		for _, call := range msg.ToolCalls {
			fmt.Printf("    tool call: %s(%s)\n", call.Name, call.Arguments)
		}
	}
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	docs, err := db.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}

	for _, doc := range docs {
		fmt.Printf("%d\t%s\t%s\t%s\n",
			doc.Id, doc.Status, doc.CreatedAt.Format(time.RFC3339), doc.Filename)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	documentID := core.ID(c.Uint64("doc"))

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := commandContext(c)
	defer cancel()

	if err := db.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document %d: %w", documentID, err)
	}
	fmt.Printf("Deleted document %d\n", documentID)
	return nil
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := reembed.DefaultConfig()
	reembedConfig.BatchSize = c.Int("batch-size")
	reembedConfig.ReportInterval = c.Int("report-interval")
	reembedConfig.MaxRetries = c.Int("max-retries")
	reembedConfig.RetryDelay = c.Duration("retry-delay")
	if workers := c.Int("workers"); workers > 0 {
		reembedConfig.Workers = workers
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Host: %s\n", c.String("host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	ctx, cancel := commandContext(c)
	defer cancel()

	summary, err := db.NewReembedder(reembedConfig, os.Stderr).Run(ctx)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d documents failed to reembed", summary.Failed)
	}
	return nil
}

// setup loads optional .env configuration, then configures logging.
func setup(c *cli.Context) error {
	// Missing .env is fine; flags and the real environment still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
