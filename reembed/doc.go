// Package reembed provides functionality for reembedding existing documents
// with new or updated embedding models.
//
// This package supports batch processing of documents on a worker pool,
// progress tracking, and retry logic with exponential backoff. Embedding rows
// are keyed by content, so rerunning against unchanged documents overwrites
// in place instead of accumulating duplicates.
package reembed
