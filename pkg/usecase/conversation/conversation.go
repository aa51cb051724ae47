package conversation

import (
	"github.com/sensei-tutor/sensei/pkg/adapter"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/repository"
)

// UseCase covers conversation management: listing, search, archive,
// delete and aggregate statistics.
type UseCase struct {
	repo      repository.Repository
	store     *memory.Store
	retriever *memory.Retriever
}

// New creates the conversation use case. A nil gemini disables the
// semantic part of Search; title and tag matching still works.
func New(repo repository.Repository, store *memory.Store, gemini adapter.Gemini) *UseCase {
	uc := &UseCase{
		repo:  repo,
		store: store,
	}
	if gemini != nil {
		uc.retriever = memory.NewRetriever(store, gemini)
	}
	return uc
}
