package docsift

import (
	"context"
	"testing"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/ai/mock"
	"github.com/poiesic/docsift/chat"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) (*Database, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider().(*mock.MockProvider)
	db, err := NewDatabase("", WithInMemoryStorage(), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, provider
}

func TestDatabase_IngestAndGet(t *testing.T) {
	db, _ := newTestDatabase(t)
	ctx := context.Background()

	result, err := db.Ingest(ctx, []byte("John Doe, SSN 123-45-6789."), "text/plain", "john.txt")
	require.NoError(t, err)
	require.NotNil(t, result.Document)

	doc, err := db.GetDocument(ctx, result.Document.Id)
	require.NoError(t, err)
	assert.Equal(t, "John Doe, SSN [REDACTED_SSN].", doc.Text)
	assert.Equal(t, core.StatusReviewRequired, doc.Status)
	assert.True(t, result.Embedded)
}

func TestDatabase_ListDocuments(t *testing.T) {
	db, _ := newTestDatabase(t)
	ctx := context.Background()

	_, err := db.Ingest(ctx, []byte("First document with enough text."), "text/plain", "a.txt")
	require.NoError(t, err)
	_, err = db.Ingest(ctx, []byte("Second document with enough text."), "text/plain", "b.txt")
	require.NoError(t, err)

	docs, err := db.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Filename)
	assert.Equal(t, "b.txt", docs[1].Filename)
}

func TestDatabase_RespondAndTranscript(t *testing.T) {
	db, provider := newTestDatabase(t)
	ctx := context.Background()

	result, err := db.Ingest(ctx, []byte("Jane Smith is a software engineer."), "text/plain", "jane.txt")
	require.NoError(t, err)

	provider.GetMockChatModel().Script = []*ai.ChatResponse{
		{Content: "Jane Smith is a software engineer."},
	}

	reply, err := db.Respond(ctx, result.Document.Id, []chat.Turn{
		{Role: core.RoleUser, Content: "Who is this about?"},
	})
	require.NoError(t, err)
	assert.Equal(t, core.RoleAssistant, reply.Role)

	transcript, err := db.Transcript(ctx, result.Document.Id)
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	assert.Equal(t, core.RoleUser, transcript[0].Role)
	assert.Equal(t, core.RoleAssistant, transcript[1].Role)
}

func TestDatabase_DeleteDocumentCascades(t *testing.T) {
	db, _ := newTestDatabase(t)
	ctx := context.Background()

	result, err := db.Ingest(ctx, []byte("A document destined for deletion."), "text/plain", "gone.txt")
	require.NoError(t, err)
	docID := result.Document.Id

	_, err = db.Respond(ctx, docID, []chat.Turn{
		{Role: core.RoleUser, Content: "Still here?"},
	})
	require.NoError(t, err)

	err = db.DeleteDocument(ctx, docID)
	require.NoError(t, err)

	_, err = db.GetDocument(ctx, docID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = db.Transcript(ctx, docID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDatabase_UnknownDocument(t *testing.T) {
	db, _ := newTestDatabase(t)

	_, err := db.GetDocument(context.Background(), core.ID(31337))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
