package file

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
)

const defaultSearchLimit = 5

// SearchResult is one matching chunk of a document
type SearchResult struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
	ChunkIndex int     `json:"chunk_index"`
}

// SearchWithin finds the chunks of one uploaded document most similar to
// the query. The file must exist; an un-embedded file yields no results.
func (u *UseCase) SearchWithin(ctx context.Context, id model.FileID, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, goerr.New("search query is empty", goerr.T(model.ErrTagValidation))
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if _, err := u.repo.GetFile(ctx, id); err != nil {
		return nil, err
	}

	matches := u.retriever.SearchFile(ctx, query, id, limit)

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			Text:       m.Record.Text,
			Similarity: m.Similarity,
			ChunkIndex: m.Record.Meta.ChunkIndex,
		})
	}
	return results, nil
}
