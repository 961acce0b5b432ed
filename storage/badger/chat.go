package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// ChatRepository implements storage.ChatRepository for BadgerDB. The message
// log is append-only; rows go away only when the owning document is deleted.
type ChatRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChatRepository = (*ChatRepository)(nil)

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(backend *Backend) (*ChatRepository, error) {
	idSeq, err := backend.GetSequence(msgRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChatRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChatRepository) Close() error {
	return r.idSeq.Release()
}

// AddChatMessage appends a message to a document's transcript.
func (r *ChatRepository) AddChatMessage(ctx context.Context, msg *core.ChatMessage) (*core.ChatMessage, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// The referenced document must exist
		doc, err := readDocument(tx, makeDocumentKey(msg.DocumentId))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

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
		msg.Id = core.ID(nextID)

		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}

		// Store primary record
		key := makeMessageKey(msg.Id)
		value, err := storage.MarshalChatMessage(msg)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update the per-document index
		indexKey := makeMessageDocKey(msg.DocumentId, msg.CreatedAt, msg.Id)
		if err := tx.Set(indexKey, storage.MarshalID(msg.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return msg, err
}

// GetChatMessages retrieves a document's transcript in chronological order.
func (r *ChatRepository) GetChatMessages(ctx context.Context, documentID core.ID) ([]*core.ChatMessage, error) {
	results := []*core.ChatMessage{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialMessageDocKey(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Read the ID from the index
			var msgID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				msgID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			msg, err := readChatMessage(tx, makeMessageKey(msgID))
			if err != nil {
				return err
			}
			if msg != nil {
				results = append(results, msg)
			}
		}
		return nil
	}, false)

	return results, err
}

// readChatMessage reads a chat message record from the transaction.
func readChatMessage(tx *badger.Txn, key []byte) (*core.ChatMessage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var msg *core.ChatMessage
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		msg, unmarshalErr = storage.UnmarshalChatMessage(val)
		return unmarshalErr
	})
	return msg, err
}
