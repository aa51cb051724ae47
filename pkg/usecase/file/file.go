package file

import (
	"context"
	"io"

	"github.com/sensei-tutor/sensei/pkg/adapter"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/repository"
)

// UseCase covers uploaded file handling: upload with text extraction and
// embedding, metadata lookup, download, analysis, in-document search and
// deletion.
type UseCase struct {
	repo      repository.Repository
	storage   adapter.Storage
	gemini    adapter.Gemini
	store     *memory.Store
	retriever *memory.Retriever
}

// NewInput contains dependencies for the file use case
type NewInput struct {
	Repo    repository.Repository
	Storage adapter.Storage
	Gemini  adapter.Gemini
	Store   *memory.Store
}

// New creates the file use case
func New(input NewInput) *UseCase {
	return &UseCase{
		repo:      input.Repo,
		storage:   input.Storage,
		gemini:    input.Gemini,
		store:     input.Store,
		retriever: memory.NewRetriever(input.Store, input.Gemini),
	}
}

// Get returns uploaded file metadata
func (u *UseCase) Get(ctx context.Context, id model.FileID) (*model.UploadedFile, error) {
	return u.repo.GetFile(ctx, id)
}

// List returns metadata for all uploaded files
func (u *UseCase) List(ctx context.Context) ([]*model.UploadedFile, error) {
	return u.repo.ListFiles(ctx)
}

// Download returns a reader over the stored file bytes plus its metadata.
// The caller must close the reader.
func (u *UseCase) Download(ctx context.Context, id model.FileID) (io.ReadCloser, *model.UploadedFile, error) {
	meta, err := u.repo.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reader, err := u.storage.Get(ctx, meta.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return reader, meta, nil
}
