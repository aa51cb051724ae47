package repository

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
)

// memoryRepo is an in-memory Repository for tests and local runs
type memoryRepo struct {
	mu    sync.RWMutex
	convs map[model.ConversationID]*model.Conversation
	files map[model.FileID]*model.UploadedFile
}

// NewMemory creates an in-memory repository
func NewMemory() Repository {
	return &memoryRepo{
		convs: make(map[model.ConversationID]*model.Conversation),
		files: make(map[model.FileID]*model.UploadedFile),
	}
}

func (r *memoryRepo) PutConversation(ctx context.Context, conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *conv
	r.convs[conv.ID] = &copied
	return nil
}

func (r *memoryRepo) GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.convs[id]
	if !ok {
		return nil, goerr.New("conversation not found", goerr.V("id", id), goerr.T(model.ErrTagNotFound))
	}
	copied := *conv
	return &copied, nil
}

func (r *memoryRepo) ListConversations(ctx context.Context, filters ...ConversationFilter) ([]*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var convs []*model.Conversation
	for _, conv := range r.convs {
		if matchConversation(conv, filters) {
			copied := *conv
			convs = append(convs, &copied)
		}
	}
	return convs, nil
}

func (r *memoryRepo) DeleteConversation(ctx context.Context, id model.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.convs, id)
	return nil
}

func (r *memoryRepo) PutFile(ctx context.Context, file *model.UploadedFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *file
	r.files[file.ID] = &copied
	return nil
}

func (r *memoryRepo) GetFile(ctx context.Context, id model.FileID) (*model.UploadedFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.files[id]
	if !ok {
		return nil, goerr.New("file not found", goerr.V("id", id), goerr.T(model.ErrTagNotFound))
	}
	copied := *file
	return &copied, nil
}

func (r *memoryRepo) ListFiles(ctx context.Context, filters ...FileFilter) ([]*model.UploadedFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var files []*model.UploadedFile
	for _, file := range r.files {
		if matchFile(file, filters) {
			copied := *file
			files = append(files, &copied)
		}
	}
	return files, nil
}

func (r *memoryRepo) DeleteFile(ctx context.Context, id model.FileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}
