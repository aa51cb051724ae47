package file

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
)

// Delete removes a file's metadata, its stored bytes and its document
// chunks. Byte cleanup is best-effort: a stale object in storage is
// preferable to metadata that points nowhere.
func (u *UseCase) Delete(ctx context.Context, id model.FileID) error {
	meta, err := u.repo.GetFile(ctx, id)
	if err != nil {
		return err
	}

	if err := u.storage.Delete(ctx, meta.StorageKey); err != nil {
		logging.From(ctx).Warn("failed to delete stored file bytes",
			"file_id", id, "key", meta.StorageKey, "error", err)
	}
	if key, ok := meta.Metadata["thumbnail_key"]; ok {
		if err := u.storage.Delete(ctx, key); err != nil {
			logging.From(ctx).Warn("failed to delete thumbnail",
				"file_id", id, "key", key, "error", err)
		}
	}

	removed := u.store.DeleteWhere(memory.ByFile(id))
	logging.From(ctx).Debug("removed document chunks", "file_id", id, "count", removed)

	if err := u.repo.DeleteFile(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete file metadata", goerr.V("id", id))
	}
	return nil
}
