package memory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/model"
	"google.golang.org/genai"
)

type mockGemini struct {
	generateContent func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	embedding       func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.generateContent(ctx, contents, config)
}

func (m *mockGemini) Embedding(ctx context.Context, text string) ([]float32, error) {
	return m.embedding(ctx, text)
}

func fixedEmbedding(vec []float32) *mockGemini {
	return &mockGemini{
		embedding: func(ctx context.Context, text string) ([]float32, error) {
			return vec, nil
		},
	}
}

func insertRecord(t *testing.T, store *memory.Store, rec *memory.Record) *memory.Record {
	t.Helper()
	stored, err := store.Insert(rec)
	gt.NoError(t, err)
	return stored
}

func TestRetrieveContextRanksBySimilarity(t *testing.T) {
	store := memory.NewStore()
	conv := model.ConversationID("conv-a")

	insertRecord(t, store, &memory.Record{
		Vector: []float32{0, 1}, Text: "far", ConversationID: conv,
	})
	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 0}, Text: "exact", ConversationID: conv,
	})
	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 1}, Text: "close", ConversationID: conv,
	})

	r := memory.NewRetriever(store, fixedEmbedding([]float32{1, 0}))
	matches := r.RetrieveContext(context.Background(), "query", 2, conv)

	gt.A(t, matches).Length(2)
	gt.Equal(t, matches[0].Record.Text, "exact")
	gt.Equal(t, matches[1].Record.Text, "close")
	gt.True(t, matches[0].Similarity > matches[1].Similarity)
}

func TestRetrieveContextStableTieBreak(t *testing.T) {
	store := memory.NewStore()
	conv := model.ConversationID("conv-a")

	// Equal similarity: insertion order decides
	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 0}, Text: "first", ConversationID: conv,
	})
	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 0}, Text: "second", ConversationID: conv,
	})

	r := memory.NewRetriever(store, fixedEmbedding([]float32{1, 0}))
	matches := r.RetrieveContext(context.Background(), "query", 10, conv)

	gt.A(t, matches).Length(2)
	gt.Equal(t, matches[0].Record.Text, "first")
	gt.Equal(t, matches[1].Record.Text, "second")
}

func TestRetrieveContextScopes(t *testing.T) {
	store := memory.NewStore()

	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 0}, Text: "in scope", ConversationID: "conv-a",
	})
	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 0}, Text: "elsewhere", ConversationID: "conv-b",
	})

	r := memory.NewRetriever(store, fixedEmbedding([]float32{1, 0}))

	scoped := r.RetrieveContext(context.Background(), "query", 10, "conv-a")
	gt.A(t, scoped).Length(1)
	gt.Equal(t, scoped[0].Record.Text, "in scope")

	gt.A(t, r.RetrieveContext(context.Background(), "query", 10, "conv-c")).Length(0)

	all := r.RetrieveContext(context.Background(), "query", 10, memory.ScopeAll)
	gt.A(t, all).Length(2)
}

func TestRetrieveContextEmbeddingFailure(t *testing.T) {
	store := memory.NewStore()
	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 0}, Text: "anything", ConversationID: "conv-a",
	})

	r := memory.NewRetriever(store, &mockGemini{
		embedding: func(ctx context.Context, text string) ([]float32, error) {
			return nil, goerr.New("provider down")
		},
	})

	matches := r.RetrieveContext(context.Background(), "query", 10, "conv-a")
	gt.A(t, matches).Length(0)
}

func TestSearchFile(t *testing.T) {
	store := memory.NewStore()
	fileID := model.NewFileID()

	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 0}, Text: "chunk one", Role: model.RoleDocument,
		Meta: memory.Meta{FileID: fileID, ChunkIndex: 0},
	})
	insertRecord(t, store, &memory.Record{
		Vector: []float32{1, 0}, Text: "unrelated chat", ConversationID: "conv-a",
		Role: model.RoleUser,
	})

	r := memory.NewRetriever(store, fixedEmbedding([]float32{1, 0}))
	matches := r.SearchFile(context.Background(), "query", fileID, 10)

	gt.A(t, matches).Length(1)
	gt.Equal(t, matches[0].Record.Text, "chunk one")
}

func TestRecentTurns(t *testing.T) {
	store := memory.NewStore()
	conv := model.ConversationID("conv-a")
	base := time.Now()

	texts := []struct {
		role model.Role
		text string
		at   time.Time
	}{
		{model.RoleUser, "oldest", base.Add(-3 * time.Minute)},
		{model.RoleAssistant, "middle", base.Add(-2 * time.Minute)},
		{model.RoleDocument, "file chunk", base.Add(-90 * time.Second)},
		{model.RoleUser, "newest", base.Add(-1 * time.Minute)},
	}
	for _, tt := range texts {
		insertRecord(t, store, &memory.Record{
			Vector: []float32{1, 0}, Text: tt.text,
			ConversationID: conv, Role: tt.role, CreatedAt: tt.at,
		})
	}

	r := memory.NewRetriever(store, fixedEmbedding([]float32{1, 0}))

	turns := r.RecentTurns(conv, 2)
	gt.A(t, turns).Length(2)
	gt.Equal(t, turns[0].Text, "middle")
	gt.Equal(t, turns[1].Text, "newest")

	// Document records never show up as turns
	all := r.RecentTurns(conv, 10)
	gt.A(t, all).Length(3)
	gt.Equal(t, all[0].Text, "oldest")
}

func TestRenderSections(t *testing.T) {
	matches := []memory.Match{
		{
			Record: &memory.Record{
				Text:           "past fact",
				ConversationID: "conv-other",
			},
			Similarity: 0.91,
		},
		{
			Record: &memory.Record{
				Text: "doc fact",
				Meta: memory.Meta{FileName: "notes.pdf"},
			},
			Similarity: 0.75,
		},
	}
	turns := []model.Turn{
		{Role: model.RoleUser, Text: "what is recursion?"},
		{Role: model.RoleAssistant, Text: "a function calling itself"},
	}

	out := memory.Render("conv-a", "prefers examples", matches, turns, "exam next week")

	gt.S(t, out).Contains("=== Student Profile ===")
	gt.S(t, out).Contains("prefers examples")
	gt.S(t, out).Contains("=== Related Memory ===")
	gt.S(t, out).Contains("[from conversation conv-other]")
	gt.S(t, out).Contains("[from file notes.pdf]")
	gt.S(t, out).Contains("=== Recent Conversation ===")
	gt.S(t, out).Contains("user: what is recursion?")
	gt.S(t, out).Contains("=== Additional Context ===")
	gt.S(t, out).Contains("exam next week")
}

func TestRenderEmpty(t *testing.T) {
	out := memory.Render("conv-a", "", nil, nil, "")
	gt.V(t, out).Equal("")
	gt.False(t, strings.Contains(out, "==="))
}
