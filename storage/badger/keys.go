package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/docsift/core"
)

// Key prefixes for different data types
const (
	docRecordPrefix     = "docrec"
	docRecordDatePrefix = "docrecd"
	docRecordIDSeq      = "docrecseq"
	embRecordPrefix     = "embrec"
	embDocPrefix        = "embdoc"
	msgRecordPrefix     = "msgrec"
	msgDocPrefix        = "msgdoc"
	msgRecordIDSeq      = "msgrecseq"
)

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", docRecordPrefix, id))
}

// makeDocumentDateKey generates a composite key for the document date index.
// Format: prefix:timestamp:id
func makeDocumentDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := docRecordDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeEmbeddingKey generates a key for an embedding record by ID.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embRecordPrefix, id))
}

// makeEmbeddingDocKey generates a composite key for the per-document
// embedding index. The timestamp precedes the embedding ID so a prefix
// scan yields embeddings in the order they were stored.
// Format: prefix:documentID:timestamp:embeddingID
func makeEmbeddingDocKey(documentID core.ID, timestamp time.Time, embeddingID core.ID) []byte {
	prefix := embDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // 8 bytes each for documentID, timestamp, embeddingID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(embeddingID))
	return buf
}

// makePartialEmbeddingDocKey generates a partial key for scanning all
// embeddings belonging to one document.
// Format: prefix:documentID
func makePartialEmbeddingDocKey(documentID core.ID) []byte {
	prefix := embDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for documentID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeMessageKey generates a key for a chat message record by ID.
func makeMessageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", msgRecordPrefix, id))
}

// makeMessageDocKey generates a composite key for the per-document
// message index. The timestamp precedes the message ID so a prefix
// scan yields the transcript in chronological order, ties broken by ID.
// Format: prefix:documentID:timestamp:messageID
func makeMessageDocKey(documentID core.ID, timestamp time.Time, messageID core.ID) []byte {
	prefix := msgDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // 8 bytes each for documentID, timestamp, messageID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(messageID))
	return buf
}

// makePartialMessageDocKey generates a partial key for scanning all
// messages belonging to one document.
// Format: prefix:documentID
func makePartialMessageDocKey(documentID core.ID) []byte {
	prefix := msgDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for documentID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}
