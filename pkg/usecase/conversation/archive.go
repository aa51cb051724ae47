package conversation

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
)

// Archive soft-deletes a conversation: it disappears from default listings
// but keeps its document and memory records.
func (u *UseCase) Archive(ctx context.Context, id model.ConversationID) error {
	conv, err := u.repo.GetConversation(ctx, id)
	if err != nil {
		return err
	}

	if conv.Archived {
		return nil
	}

	conv.Archived = true
	if err := u.repo.PutConversation(ctx, conv); err != nil {
		return goerr.Wrap(err, "failed to archive conversation", goerr.V("id", id))
	}
	return nil
}

// Delete hard-deletes a conversation together with its memory records.
// The vector cleanup is best-effort: the records are process-local anyway.
func (u *UseCase) Delete(ctx context.Context, id model.ConversationID) error {
	if _, err := u.repo.GetConversation(ctx, id); err != nil {
		return err
	}

	if err := u.repo.DeleteConversation(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete conversation", goerr.V("id", id))
	}

	removed := u.store.DeleteByConversation(id)
	logging.From(ctx).Info("deleted conversation",
		"conversation_id", id, "memory_records_removed", removed)
	return nil
}
