// Package ingest provides the document ingestion pipeline.
//
// The Pipeline type runs an uploaded file through a fixed sequence of stages:
//   - Extracting plain text from the raw bytes
//   - Sanitizing control characters out of the text
//   - Redacting personally identifiable information
//   - Discovering a schema and extracting structured fields via the AI provider
//   - Persisting the document for review
//   - Embedding the redacted text for retrieval
//
// Stages before persistence are fatal on failure: nothing is stored and the
// error is returned. A failed embedding is the one degraded path: the
// document is already persisted and remains usable without retrieval.
package ingest
