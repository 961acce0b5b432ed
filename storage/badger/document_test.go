package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (storage.DocumentRepository, storage.ChatRepository) {
	t.Helper()
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chatRepo.Close()
		docRepo.Close()
		backend.Close()
	})
	return docRepo, chatRepo
}

func TestDocumentBasics(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	doc := &core.Document{
		Filename:   "resume.txt",
		Text:       "Jane Smith, software engineer.",
		Schema:     json.RawMessage(`{"document_type":"resume"}`),
		Extracted:  json.RawMessage(`{"document_type":"resume","person":"Jane Smith"}`),
		Confidence: map[string]float64{"person": 0.9},
		Status:     core.StatusReviewRequired,
	}

	added, err := docRepo.AddDocument(ctx, doc)
	require.NoError(t, err)
	require.NotZero(t, added.Id)
	assert.False(t, added.CreatedAt.IsZero())

	retrieved, err := docRepo.GetDocument(ctx, added.Id)
	require.NoError(t, err)
	assert.Equal(t, "resume.txt", retrieved.Filename)
	assert.Equal(t, "Jane Smith, software engineer.", retrieved.Text)
	assert.Equal(t, core.StatusReviewRequired, retrieved.Status)
	assert.JSONEq(t, `{"document_type":"resume","person":"Jane Smith"}`, string(retrieved.Extracted))
	assert.Equal(t, 0.9, retrieved.Confidence["person"])
}

func TestGetDocument_NotFound(t *testing.T) {
	docRepo, _ := newTestRepos(t)

	_, err := docRepo.GetDocument(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListDocuments_OrderedByCreation(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-1 * time.Hour)
	names := []string{"first.txt", "second.txt", "third.txt"}
	for i, name := range names {
		_, err := docRepo.AddDocument(ctx, &core.Document{
			Filename:  name,
			Status:    core.StatusReviewRequired,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	docs, err := docRepo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, name := range names {
		assert.Equal(t, name, docs[i].Filename)
	}
}

func TestListDocuments_Empty(t *testing.T) {
	docRepo, _ := newTestRepos(t)

	docs, err := docRepo.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAddEmbedding_MissingDocument(t *testing.T) {
	docRepo, _ := newTestRepos(t)

	_, err := docRepo.AddEmbedding(context.Background(), &core.Embedding{
		Id:         core.IDFromContent("orphan"),
		DocumentId: core.ID(999),
		Vector:     []float32{0.1, 0.2},
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetEmbeddings_InsertionOrder(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "doc.txt",
		Status:   core.StatusReviewRequired,
	})
	require.NoError(t, err)

	base := time.Now().UTC()
	var ids []core.ID
	for i := 0; i < 3; i++ {
		emb := &core.Embedding{
			Id:         core.IDFromContent(fmt.Sprintf("chunk-%d", i)),
			DocumentId: doc.Id,
			Vector:     []float32{float32(i), 0},
			CreatedAt:  base.Add(time.Duration(i) * time.Microsecond),
		}
		_, err := docRepo.AddEmbedding(ctx, emb)
		require.NoError(t, err)
		ids = append(ids, emb.Id)
	}

	embeddings, err := docRepo.GetEmbeddings(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	for i, emb := range embeddings {
		assert.Equal(t, ids[i], emb.Id)
	}
}

func TestNearestEmbeddings_AscendingDistance(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "doc.txt",
		Status:   core.StatusReviewRequired,
	})
	require.NoError(t, err)

	base := time.Now().UTC()
	vectors := [][]float32{
		{5, 0}, // distance 5 from origin
		{1, 0}, // distance 1
		{3, 0}, // distance 3
	}
	for i, vec := range vectors {
		_, err := docRepo.AddEmbedding(ctx, &core.Embedding{
			Id:         core.IDFromContent(fmt.Sprintf("chunk-%d", i)),
			DocumentId: doc.Id,
			Vector:     vec,
			CreatedAt:  base.Add(time.Duration(i) * time.Microsecond),
		})
		require.NoError(t, err)
	}

	matches, err := docRepo.NearestEmbeddings(ctx, doc.Id, []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.InDelta(t, 1.0, matches[0].Distance, 1e-6)
	assert.InDelta(t, 3.0, matches[1].Distance, 1e-6)
}

func TestNearestEmbeddings_TiesKeepInsertionOrder(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "doc.txt",
		Status:   core.StatusReviewRequired,
	})
	require.NoError(t, err)

	// Two embeddings at the same distance from the query vector
	base := time.Now().UTC()
	first := &core.Embedding{
		Id:         core.IDFromContent("first"),
		DocumentId: doc.Id,
		Vector:     []float32{1, 0},
		CreatedAt:  base,
	}
	second := &core.Embedding{
		Id:         core.IDFromContent("second"),
		DocumentId: doc.Id,
		Vector:     []float32{0, 1},
		CreatedAt:  base.Add(time.Microsecond),
	}
	_, err = docRepo.AddEmbedding(ctx, first)
	require.NoError(t, err)
	_, err = docRepo.AddEmbedding(ctx, second)
	require.NoError(t, err)

	matches, err := docRepo.NearestEmbeddings(ctx, doc.Id, []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, first.Id, matches[0].EmbeddingId)
	assert.Equal(t, second.Id, matches[1].EmbeddingId)
}

func TestNearestEmbeddings_NoEmbeddings(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "empty.txt",
		Status:   core.StatusReviewRequired,
	})
	require.NoError(t, err)

	matches, err := docRepo.NearestEmbeddings(ctx, doc.Id, []float32{0.1, 0.2}, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNearestEmbeddings_SkipsMismatchedDimensions(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "doc.txt",
		Status:   core.StatusReviewRequired,
	})
	require.NoError(t, err)

	base := time.Now().UTC()
	_, err = docRepo.AddEmbedding(ctx, &core.Embedding{
		Id:         core.IDFromContent("stale"),
		DocumentId: doc.Id,
		Vector:     []float32{1, 2, 3}, // old model dimensions
		CreatedAt:  base,
	})
	require.NoError(t, err)
	current := &core.Embedding{
		Id:         core.IDFromContent("current"),
		DocumentId: doc.Id,
		Vector:     []float32{1, 2},
		CreatedAt:  base.Add(time.Microsecond),
	}
	_, err = docRepo.AddEmbedding(ctx, current)
	require.NoError(t, err)

	matches, err := docRepo.NearestEmbeddings(ctx, doc.Id, []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, current.Id, matches[0].EmbeddingId)
}

func TestDeleteDocument_Cascade(t *testing.T) {
	docRepo, chatRepo := newTestRepos(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "doomed.txt",
		Status:   core.StatusReviewRequired,
	})
	require.NoError(t, err)
	other, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "survivor.txt",
		Status:   core.StatusReviewRequired,
	})
	require.NoError(t, err)

	_, err = docRepo.AddEmbedding(ctx, &core.Embedding{
		Id:         core.IDFromContent("doomed"),
		DocumentId: doc.Id,
		Vector:     []float32{0.1, 0.2},
	})
	require.NoError(t, err)
	_, err = docRepo.AddEmbedding(ctx, &core.Embedding{
		Id:         core.IDFromContent("survivor"),
		DocumentId: other.Id,
		Vector:     []float32{0.3, 0.4},
	})
	require.NoError(t, err)

	_, err = chatRepo.AddChatMessage(ctx, &core.ChatMessage{
		DocumentId: doc.Id,
		Role:       core.RoleUser,
		Content:    "What is this document about?",
	})
	require.NoError(t, err)

	err = docRepo.DeleteDocument(ctx, doc.Id)
	require.NoError(t, err)

	_, err = docRepo.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	embeddings, err := docRepo.GetEmbeddings(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, embeddings)

	messages, err := chatRepo.GetChatMessages(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// The other document's data is untouched
	_, err = docRepo.GetDocument(ctx, other.Id)
	require.NoError(t, err)
	survivors, err := docRepo.GetEmbeddings(ctx, other.Id)
	require.NoError(t, err)
	assert.Len(t, survivors, 1)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	docRepo, _ := newTestRepos(t)

	err := docRepo.DeleteDocument(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
