// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Text must not contain the NUL character
//   - Status must be a terminal status (ReviewRequired or Error)
//
// NOT validated (populated by the pipeline or store):
//   - ID (0 is valid before the store assigns one)
//   - Schema/Extracted (may be JSON null)
//   - Text may be empty (non-text inputs ingest with empty text)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if strings.ContainsRune(doc.Text, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrTextContainsNul)
	}

	if err := ValidateDocumentStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateChatMessage validates a ChatMessage according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Role must be valid (user, assistant, or system)
//   - DocumentId must be set
//
// NOT validated:
//   - ToolCalls (nil is the normal case)
//   - ID (0 is valid from database sequences)
func ValidateChatMessage(msg *ChatMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidChatMessage)
	}

	if msg.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrEmptyContent)
	}

	if err := ValidateMessageRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, err)
	}

	if msg.DocumentId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrMissingDocumentId)
	}

	return nil
}

// ValidateMessageRole validates that a MessageRole has a valid value.
func ValidateMessageRole(role MessageRole) error {
	if role != RoleUser && role != RoleAssistant && role != RoleSystem {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}

// ValidateDocumentStatus validates that a DocumentStatus has a valid value.
func ValidateDocumentStatus(status DocumentStatus) error {
	if status != StatusReviewRequired && status != StatusError {
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
	return nil
}
