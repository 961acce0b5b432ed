package core

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EmbeddingID derives the ID of a document's embedding row from the document
// ID and the embedded text. Re-embedding identical text for the same document
// overwrites the existing row instead of duplicating it.
func EmbeddingID(documentID ID, text string) ID {
	return IDFromContent(fmt.Sprintf("%d:%s", documentID, text))
}

// DocumentStatus is the lifecycle state of an ingested document.
// Only the two terminal states are ever persisted; the intermediate
// pipeline stages live in the ingest package.
type DocumentStatus int

const (
	// StatusReviewRequired indicates ingestion completed and the document
	// awaits human inspection.
	StatusReviewRequired DocumentStatus = iota + 1
	// StatusError indicates ingestion failed irrecoverably.
	StatusError
)

// String returns the persisted wire form of the status.
func (s DocumentStatus) String() string {
	switch s {
	case StatusReviewRequired:
		return "REVIEW_REQUIRED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Document is a fully ingested document record. It is written once, at
// pipeline completion, and read-only thereafter.
type Document struct {
	Id         ID
	Filename   string             // Original upload name, informational only
	Text       string             // Sanitized and redacted text, never contains NUL
	Schema     json.RawMessage    // Model-discovered JSON-Schema-like description
	Extracted  json.RawMessage    // Structured object conforming to Schema; nullable, never absent
	Confidence map[string]float64 // Field path -> confidence in [0,1]
	Status     DocumentStatus
	CreatedAt  time.Time
}

// Embedding is one fixed-dimension vector for a document's text.
// A document has at most one embedding row; trivially short texts have none.
type Embedding struct {
	Id         ID
	DocumentId ID
	Vector     []float32
	CreatedAt  time.Time
}

// MessageRole identifies the author of a chat message.
type MessageRole int

const (
	// RoleUser represents the human asking questions.
	RoleUser MessageRole = iota + 1
	// RoleAssistant represents the model's replies.
	RoleAssistant
	// RoleSystem represents injected context messages.
	RoleSystem
)

// String returns the role's wire form.
func (r MessageRole) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleSystem:
		return "system"
	default:
		return "unknown"
	}
}

// ToolCall records one tool invocation an assistant made while producing a
// message. Only the call shape is persisted, never the tool result.
type ToolCall struct {
	Name      string
	Arguments string // Raw JSON argument payload as sent by the model
}

// ChatMessage is one entry in a document's append-only conversation log.
type ChatMessage struct {
	Id         ID
	DocumentId ID
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall // nil when the message involved no tools
	CreatedAt  time.Time
}

// SimilarityMatch is one nearest-neighbour hit from a vector search,
// with Euclidean distance (lower = closer).
type SimilarityMatch struct {
	EmbeddingId ID
	Distance    float32
}
