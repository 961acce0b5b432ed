package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

func TestChatMessageBasics(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		chatRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "notes.txt",
		Status:   core.StatusReviewRequired,
	})
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	msg := &core.ChatMessage{
		DocumentId: doc.Id,
		Role:       core.RoleUser,
		Content:    "Hello, world!",
	}

	added, err := chatRepo.AddChatMessage(ctx, msg)
	if err != nil {
		t.Fatalf("Failed to add chat message: %v", err)
	}

	if added.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}

	messages, err := chatRepo.GetChatMessages(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get chat messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "Hello, world!" {
		t.Fatalf("Expected 'Hello, world!', got '%s'", messages[0].Content)
	}
	if messages[0].Role != core.RoleUser {
		t.Fatalf("Expected user role, got %v", messages[0].Role)
	}
}

func TestChatMessage_MissingDocument(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		chatRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	_, err = chatRepo.AddChatMessage(context.Background(), &core.ChatMessage{
		DocumentId: core.ID(404),
		Role:       core.RoleUser,
		Content:    "orphaned",
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestChatMessages_ChronologicalOrder(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		chatRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Filename: "notes.txt",
		Status:   core.StatusReviewRequired,
	})
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	base := time.Now().UTC()
	turns := []struct {
		role    core.MessageRole
		content string
	}{
		{core.RoleUser, "Who wrote this?"},
		{core.RoleAssistant, "Jane Smith."},
		{core.RoleUser, "What are her skills?"},
	}
	for i, turn := range turns {
		_, err := chatRepo.AddChatMessage(ctx, &core.ChatMessage{
			DocumentId: doc.Id,
			Role:       turn.role,
			Content:    turn.content,
			CreatedAt:  base.Add(time.Duration(i) * time.Millisecond),
		})
		if err != nil {
			t.Fatalf("Failed to add chat message: %v", err)
		}
	}

	messages, err := chatRepo.GetChatMessages(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get chat messages: %v", err)
	}
	if len(messages) != len(turns) {
		t.Fatalf("Expected %d messages, got %d", len(turns), len(messages))
	}
	for i, turn := range turns {
		if messages[i].Content != turn.content {
			t.Fatalf("Message %d: expected '%s', got '%s'", i, turn.content, messages[i].Content)
		}
		if messages[i].Role != turn.role {
			t.Fatalf("Message %d: expected role %v, got %v", i, turn.role, messages[i].Role)
		}
	}
}

func TestChatMessages_ScopedToDocument(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		chatRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	first, err := docRepo.AddDocument(ctx, &core.Document{Filename: "a.txt", Status: core.StatusReviewRequired})
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}
	second, err := docRepo.AddDocument(ctx, &core.Document{Filename: "b.txt", Status: core.StatusReviewRequired})
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	if _, err := chatRepo.AddChatMessage(ctx, &core.ChatMessage{DocumentId: first.Id, Role: core.RoleUser, Content: "for a"}); err != nil {
		t.Fatalf("Failed to add chat message: %v", err)
	}
	if _, err := chatRepo.AddChatMessage(ctx, &core.ChatMessage{DocumentId: second.Id, Role: core.RoleUser, Content: "for b"}); err != nil {
		t.Fatalf("Failed to add chat message: %v", err)
	}

	messages, err := chatRepo.GetChatMessages(ctx, first.Id)
	if err != nil {
		t.Fatalf("Failed to get chat messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "for a" {
		t.Fatalf("Expected 'for a', got '%s'", messages[0].Content)
	}
}
