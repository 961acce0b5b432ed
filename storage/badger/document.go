package badger

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(docRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocument persists a new document.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Always generate new ID from sequence
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		doc.Id = core.ID(nextID)

		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}

		// Store primary record
		key := makeDocumentKey(doc.Id)
		value, err := storage.MarshalDocument(doc)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update date index
		dateKey := makeDocumentDateKey(doc.CreatedAt, doc.Id)
		if err := tx.Set(dateKey, storage.MarshalID(doc.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return doc, err
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		var err error
		result, err = readDocument(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListDocuments retrieves all documents ordered by creation time ascending.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(docRecordDatePrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Read the ID from the index
			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			doc, err := readDocument(tx, makeDocumentKey(docID))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteDocument removes a document along with its embeddings and chat
// messages in a single transaction.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)

		// Read record to get metadata for index cleanup
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		// Delete embeddings and their index entries
		embIndexKeys, embIDs, err := collectIndexEntries(tx, makePartialEmbeddingDocKey(id))
		if err != nil {
			return err
		}
		for i, indexKey := range embIndexKeys {
			if err := tx.Delete(indexKey); err != nil {
				return err
			}
			if err := tx.Delete(makeEmbeddingKey(embIDs[i])); err != nil {
				return err
			}
		}

		// Delete chat messages and their index entries
		msgIndexKeys, msgIDs, err := collectIndexEntries(tx, makePartialMessageDocKey(id))
		if err != nil {
			return err
		}
		for i, indexKey := range msgIndexKeys {
			if err := tx.Delete(indexKey); err != nil {
				return err
			}
			if err := tx.Delete(makeMessageKey(msgIDs[i])); err != nil {
				return err
			}
		}

		// Delete from date index
		dateKey := makeDocumentDateKey(doc.CreatedAt, doc.Id)
		if err := tx.Delete(dateKey); err != nil {
			return err
		}

		// Delete primary record
		if err := tx.Delete(key); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// AddEmbedding persists an embedding row for an existing document.
// The embedding ID must already be set by the caller.
func (r *DocumentRepository) AddEmbedding(ctx context.Context, embedding *core.Embedding) (*core.Embedding, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// The referenced document must exist
		doc, err := readDocument(tx, makeDocumentKey(embedding.DocumentId))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if embedding.CreatedAt.IsZero() {
			embedding.CreatedAt = time.Now().UTC()
		}

		// Store primary record
		key := makeEmbeddingKey(embedding.Id)
		value, err := storage.MarshalEmbedding(embedding)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update the per-document index
		indexKey := makeEmbeddingDocKey(embedding.DocumentId, embedding.CreatedAt, embedding.Id)
		if err := tx.Set(indexKey, storage.MarshalID(embedding.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return embedding, err
}

// GetEmbeddings retrieves all embeddings for a document in insertion order.
func (r *DocumentRepository) GetEmbeddings(ctx context.Context, documentID core.ID) ([]*core.Embedding, error) {
	results := []*core.Embedding{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanEmbeddings(tx, documentID, func(embedding *core.Embedding) {
			results = append(results, embedding)
		})
	}, false)
	return results, err
}

// NearestEmbeddings finds up to k embeddings of a document closest to the
// query vector by Euclidean distance, ascending. Equal distances keep
// insertion order.
func (r *DocumentRepository) NearestEmbeddings(ctx context.Context, documentID core.ID, vector []float32, k int) ([]*core.SimilarityMatch, error) {
	matches := []*core.SimilarityMatch{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanEmbeddings(tx, documentID, func(embedding *core.Embedding) {
			// Vectors from a previous embedding model are unusable until
			// the document is re-embedded
			if len(embedding.Vector) != len(vector) {
				r.backend.logger.Warn("skipping embedding with mismatched dimensions",
					"embedding_id", embedding.Id,
					"document_id", documentID,
					"got", len(embedding.Vector),
					"want", len(vector))
				return
			}
			matches = append(matches, &core.SimilarityMatch{
				EmbeddingId: embedding.Id,
				Distance:    euclideanDistance(vector, embedding.Vector),
			})
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// Stable sort preserves insertion order for equal distances
	slices.SortStableFunc(matches, func(a, b *core.SimilarityMatch) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// scanEmbeddings walks a document's embedding index in insertion order,
// invoking fn for each stored embedding.
func (r *DocumentRepository) scanEmbeddings(tx *badger.Txn, documentID core.ID, fn func(*core.Embedding)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialEmbeddingDocKey(documentID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var embID core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			embID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		embedding, err := readEmbedding(tx, makeEmbeddingKey(embID))
		if err != nil {
			return err
		}
		if embedding != nil {
			fn(embedding)
		}
	}
	return nil
}

// Helper functions

// readDocument reads a document record from the transaction.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// readEmbedding reads an embedding record from the transaction.
func readEmbedding(tx *badger.Txn, key []byte) (*core.Embedding, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var embedding *core.Embedding
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		embedding, unmarshalErr = storage.UnmarshalEmbedding(val)
		return unmarshalErr
	})
	return embedding, err
}

// collectIndexEntries gathers all index keys under a prefix together with the
// record IDs they point at. Keys are copied so they survive the iterator.
func collectIndexEntries(tx *badger.Txn, prefix []byte) ([][]byte, []core.ID, error) {
	var keys [][]byte
	var ids []core.ID

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		keys = append(keys, item.KeyCopy(nil))

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
	}
	return keys, ids, nil
}

// euclideanDistance calculates the L2 distance between two vectors of equal
// length.
func euclideanDistance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
