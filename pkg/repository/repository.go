package repository

import (
	"context"

	"github.com/sensei-tutor/sensei/pkg/model"
)

// ConversationFilter is a function to filter conversations in list operations
type ConversationFilter func(*model.Conversation) bool

// FileFilter is a function to filter uploaded files in list operations
type FileFilter func(*model.UploadedFile) bool

// Repository defines the interface for conversation and file metadata persistence
type Repository interface {
	// PutConversation saves a conversation (create or update)
	PutConversation(ctx context.Context, conv *model.Conversation) error

	// GetConversation retrieves a conversation by ID
	GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error)

	// ListConversations retrieves conversations with optional filters
	ListConversations(ctx context.Context, filters ...ConversationFilter) ([]*model.Conversation, error)

	// DeleteConversation removes a conversation document
	DeleteConversation(ctx context.Context, id model.ConversationID) error

	// PutFile saves uploaded file metadata (create or update)
	PutFile(ctx context.Context, file *model.UploadedFile) error

	// GetFile retrieves uploaded file metadata by ID
	GetFile(ctx context.Context, id model.FileID) (*model.UploadedFile, error)

	// ListFiles retrieves uploaded file metadata with optional filters
	ListFiles(ctx context.Context, filters ...FileFilter) ([]*model.UploadedFile, error)

	// DeleteFile removes uploaded file metadata
	DeleteFile(ctx context.Context, id model.FileID) error
}

// NotArchived filters out archived conversations
func NotArchived() ConversationFilter {
	return func(c *model.Conversation) bool {
		return !c.Archived
	}
}
