package ingest

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// ExtractText converts uploaded bytes to plain text. Plain text media types
// pass through unchanged. PDFs are recognized by the declared media type or
// a .pdf filename suffix and parsed page by page. Unsupported types yield an
// empty string rather than an error so the document can still be persisted
// for manual review.
func ExtractText(ctx context.Context, data []byte, mediaType, filename string) (string, error) {
	base := mediaType
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		base = parsed
	}
	base = strings.ToLower(base)

	switch {
	case strings.HasPrefix(base, "text/"):
		return string(data), nil
	case base == "application/pdf" || isPDFName(filename):
		return extractPDF(ctx, data)
	default:
		return "", nil
	}
}

// isPDFName matches a .pdf filename suffix regardless of case. Uploads often
// arrive with a generic media type like application/octet-stream.
func isPDFName(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// extractPDF pulls text from every page of a PDF and joins the pages.
func extractPDF(ctx context.Context, data []byte) (string, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	pages, err := loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		parts = append(parts, page.PageContent)
	}
	return strings.Join(parts, "\n"), nil
}
