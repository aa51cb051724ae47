package conversation

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Stats are the aggregate numbers shown in the memory dashboard
type Stats struct {
	MemoryRecords       int `json:"memory_records"`
	EmbeddingDimension  int `json:"embedding_dimension"`
	ActiveConversations int `json:"active_conversations"`
	ArchivedCount       int `json:"archived_conversations"`
	UploadedFiles       int `json:"uploaded_files"`
}

// Stats returns record and conversation counts
func (u *UseCase) Stats(ctx context.Context) (*Stats, error) {
	convs, err := u.repo.ListConversations(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations for stats")
	}

	files, err := u.repo.ListFiles(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list files for stats")
	}

	stats := &Stats{
		MemoryRecords:      u.store.Count(),
		EmbeddingDimension: u.store.Dimension(),
		UploadedFiles:      len(files),
	}
	for _, conv := range convs {
		if conv.Archived {
			stats.ArchivedCount++
		} else {
			stats.ActiveConversations++
		}
	}

	return stats, nil
}
