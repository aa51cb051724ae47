package chat

import (
	"context"

	"github.com/sensei-tutor/sensei/pkg/adapter"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/profile"
	"github.com/sensei-tutor/sensei/pkg/repository"
	"github.com/sensei-tutor/sensei/pkg/service/dspy"
)

// EnhancedClient is the part of the DSPy service client the orchestrator
// uses, split out so tests can simulate the service without HTTP.
type EnhancedClient interface {
	Healthy(ctx context.Context) bool
	Chat(ctx context.Context, req *dspy.ChatRequest) (*dspy.ChatResponse, error)
}

// UseCase orchestrates one chat turn: attachment ingest, context assembly,
// generation with optional enhanced service and fallback, and persistence.
type UseCase struct {
	repo      repository.Repository
	gemini    adapter.Gemini
	store     *memory.Store
	retriever *memory.Retriever
	profiles  *profile.Registry

	// enhanced is nil when the DSPy integration is disabled
	enhanced EnhancedClient
	fallback bool
}

// NewInput contains dependencies for the chat use case
type NewInput struct {
	Repo     repository.Repository
	Gemini   adapter.Gemini
	Store    *memory.Store
	Profiles *profile.Registry

	// Enhanced may be nil to disable the enhanced path
	Enhanced EnhancedClient
	// Fallback enables direct generation when the enhanced path fails
	Fallback bool
}

// New creates the chat use case
func New(input NewInput) *UseCase {
	return &UseCase{
		repo:      input.Repo,
		gemini:    input.Gemini,
		store:     input.Store,
		retriever: memory.NewRetriever(input.Store, input.Gemini),
		profiles:  input.Profiles,
		enhanced:  input.Enhanced,
		fallback:  input.Fallback,
	}
}
