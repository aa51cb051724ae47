package file

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/extract"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
)

const contentPreviewLen = 500

// UploadInput is one file upload
type UploadInput struct {
	Name     string
	MimeType string
	Data     []byte
}

// Upload validates and stores a file, extracts its text and embeds the
// chunks into the memory store as document records. The returned metadata
// reflects the final processing status: completed when extraction worked,
// failed otherwise (the bytes are kept either way so the file can still be
// downloaded).
func (u *UseCase) Upload(ctx context.Context, input *UploadInput) (*model.UploadedFile, error) {
	if input.Name == "" {
		return nil, goerr.New("file name is empty", goerr.T(model.ErrTagValidation))
	}
	if len(input.Data) == 0 {
		return nil, goerr.New("file is empty", goerr.V("name", input.Name), goerr.T(model.ErrTagValidation))
	}
	if int64(len(input.Data)) > model.MaxUploadSize {
		return nil, goerr.New("file exceeds size limit",
			goerr.V("name", input.Name), goerr.V("size", len(input.Data)),
			goerr.V("max", int64(model.MaxUploadSize)), goerr.T(model.ErrTagValidation))
	}
	if model.ClassifyMime(input.MimeType) == model.FileKindUnsupported {
		return nil, goerr.New("unsupported file type",
			goerr.V("name", input.Name), goerr.V("mime_type", input.MimeType),
			goerr.T(model.ErrTagValidation))
	}

	file := &model.UploadedFile{
		ID:         model.NewFileID(),
		Name:       input.Name,
		MimeType:   input.MimeType,
		Size:       int64(len(input.Data)),
		Status:     model.FileStatusPending,
		UploadedAt: time.Now(),
	}
	file.StorageKey = "files/" + string(file.ID) + "/" + input.Name

	if err := u.repo.PutFile(ctx, file); err != nil {
		return nil, goerr.Wrap(err, "failed to save file metadata")
	}

	if err := u.writeBytes(ctx, file.StorageKey, input.Data); err != nil {
		file.Status = model.FileStatusFailed
		file.Content = "failed to store file bytes"
		if perr := u.repo.PutFile(ctx, file); perr != nil {
			logging.From(ctx).Warn("failed to record upload failure", "error", perr)
		}
		return nil, err
	}

	file.Status = model.FileStatusProcessing
	if err := u.repo.PutFile(ctx, file); err != nil {
		logging.From(ctx).Warn("failed to record processing status", "error", err)
	}

	u.process(ctx, file, input.Data)

	if err := u.repo.PutFile(ctx, file); err != nil {
		logging.From(ctx).Warn("failed to record final file status", "error", err)
	}

	return file, nil
}

// process runs extraction and embedding, mutating the metadata in place
func (u *UseCase) process(ctx context.Context, file *model.UploadedFile, data []byte) {
	result, err := extract.Text(file.Name, file.MimeType, data)
	if err != nil {
		logging.From(ctx).Warn("file text extraction failed",
			"file_id", file.ID, "name", file.Name, "error", err)
		file.Status = model.FileStatusFailed
		file.Content = "text extraction failed"
		return
	}

	if result.Kind == model.FileKindImage {
		u.storeThumbnail(ctx, file, data)
	}

	chunks := splitChunks(result.Text, chunkSize)
	embedded := 0
	for i, chunk := range chunks {
		vector, err := u.gemini.Embedding(ctx, chunk)
		if err != nil {
			// Degrade gracefully: the file is still usable for download
			// and analysis, it just will not show up in semantic search.
			logging.From(ctx).Warn("embedding failed, skipping document chunk",
				"file_id", file.ID, "chunk", i, "error", err)
			continue
		}

		if _, err := u.store.Insert(&memory.Record{
			Vector:    vector,
			Text:      chunk,
			Role:      model.RoleDocument,
			CreatedAt: time.Now(),
			Meta: memory.Meta{
				FileName:   file.Name,
				FileID:     file.ID,
				ChunkIndex: i,
			},
		}); err != nil {
			logging.From(ctx).Warn("failed to insert document chunk",
				"file_id", file.ID, "chunk", i, "error", err)
			continue
		}
		embedded++
	}

	file.Status = model.FileStatusCompleted
	file.Content = preview(result.Text)
	file.ChunkCount = embedded
}

func (u *UseCase) storeThumbnail(ctx context.Context, file *model.UploadedFile, data []byte) {
	thumb, err := extract.Thumbnail(data)
	if err != nil {
		logging.From(ctx).Warn("thumbnail generation failed",
			"file_id", file.ID, "error", err)
		return
	}

	key := "files/" + string(file.ID) + "/thumbnail.png"
	if err := u.writeBytes(ctx, key, thumb); err != nil {
		logging.From(ctx).Warn("failed to store thumbnail", "file_id", file.ID, "error", err)
		return
	}

	if file.Metadata == nil {
		file.Metadata = make(map[string]string)
	}
	file.Metadata["thumbnail_key"] = key
}

func (u *UseCase) writeBytes(ctx context.Context, key string, data []byte) error {
	writer, err := u.storage.Put(ctx, key)
	if err != nil {
		return goerr.Wrap(err, "failed to open storage writer", goerr.V("key", key))
	}
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return goerr.Wrap(err, "failed to write file bytes", goerr.V("key", key))
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to finish storage write", goerr.V("key", key))
	}
	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= contentPreviewLen {
		return text
	}
	return string(runes[:contentPreviewLen]) + "..."
}
