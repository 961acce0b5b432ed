package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docsift"
	"github.com/poiesic/docsift/ingest"
)

// Built-in sample documents, used when no source directory is given.
var samples = map[string]string{
	"welcome-memo.txt": `MEMO

To: All staff
From: Facilities
Date: March 3

The east stairwell will be closed for repainting from Monday through
Wednesday. Please use the main elevators. Coffee service is unaffected.`,

	"invoice-0042.txt": `INVOICE #0042

Billed to: Wrenfield Consulting LLC
Date: 2025-02-14
Due: 2025-03-14

  Design review, 12 hours @ $150 ....... $1,800.00
  Prototype materials .................. $375.00
  Shipping ............................. $42.50

Total due: $2,217.50
Payment by check or wire transfer.`,

	"resume-jsmith.txt": `Jane Smith
Senior Software Engineer

Experience:
  Acme Corp, 2019-2024. Led the storage team, shipped the v2 index engine.
  Initech, 2015-2019. Backend services in Go and Python.

Skills: Go, SQL, Kubernetes, distributed systems.
Education: B.S. Computer Science, State University.`,

	"field-notes.txt": `Field notes, survey site 7.

Soil samples collected at 0.5m intervals along the north transect.
Moisture readings elevated near the creek bed, consistent with last
season. Two samples flagged for lab analysis (labels S7-14, S7-15).
Weather: overcast, light wind. No equipment issues.`,

	"meeting-minutes.txt": `Minutes, product sync, week 9.

Attendees: Dana, Priya, Marcus, Tom.
Decisions: ship the import wizard behind a flag; defer the bulk export
API to next quarter. Marcus to draft the migration notice by Friday.
Open question: do we keep the legacy CSV path through the summer?`,
}

var (
	srcDirName = flag.String("src", "", "directory of documents to ingest")
	dbPath     = flag.String("db", "./docsift_db", "path to BadgerDB database directory")
	workers    = flag.Int("workers", 4, "number of concurrent ingestion workers")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// seedFile is one document queued for ingestion.
type seedFile struct {
	name      string
	mediaType string
	data      []byte
}

// filesFromDir loads every regular file in a directory. Subdirectories are
// not descended into.
func filesFromDir(dir string) ([]seedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []seedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, seedFile{
			name:      entry.Name(),
			mediaType: mediaTypeFor(entry.Name()),
			data:      data,
		})
	}
	return files, nil
}

func filesFromSamples() []seedFile {
	files := make([]seedFile, 0, len(samples))
	for name, text := range samples {
		files = append(files, seedFile{
			name:      name,
			mediaType: "text/plain",
			data:      []byte(text),
		})
	}
	return files
}

func mediaTypeFor(name string) string {
	if mt := mime.TypeByExtension(filepath.Ext(name)); mt != "" {
		return mt
	}
	return "text/plain"
}

// ingestAll pushes every file through the pipeline on a worker pool and
// logs the outcome per file. The pipeline serializes writes internally, so
// workers only add concurrency to extraction and the model calls.
func ingestAll(ctx context.Context, db *docsift.Database, files []seedFile, poolSize int) error {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, file := range files {
		wg.Add(1)
		f := file
		if err := pool.Submit(func() {
			defer wg.Done()
			result, ingestErr := ingestOne(ctx, db, f)
			reportOutcome(f.name, result, ingestErr)
		}); err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()
	return nil
}

func ingestOne(ctx context.Context, db *docsift.Database, f seedFile) (*ingest.Result, error) {
	result, err := db.Ingest(ctx, f.data, f.mediaType, f.name)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func reportOutcome(name string, result *ingest.Result, err error) {
	switch {
	case err != nil:
		slog.Error("ingestion failed", "file", name, "error", err)
	case result.EmbeddingErr != nil:
		slog.Warn("document stored without embedding",
			"file", name, "id", result.Document.Id, "error", result.EmbeddingErr)
	case !result.Embedded:
		slog.Info("document stored, text too short to embed",
			"file", name, "id", result.Document.Id)
	default:
		slog.Info("document ingested",
			"file", name, "id", result.Document.Id, "status", result.Document.Status.String())
	}
}

func main() {
	db, err := docsift.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	var files []seedFile
	if *srcDirName != "" {
		files, err = filesFromDir(*srcDirName)
		if err != nil {
			panic(err)
		}
	} else {
		files = filesFromSamples()
	}

	if err := ingestAll(context.Background(), db, files, *workers); err != nil {
		panic(err)
	}
}
