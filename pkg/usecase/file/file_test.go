package file_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sensei-tutor/sensei/pkg/adapter"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/repository"
	"github.com/sensei-tutor/sensei/pkg/usecase/file"
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

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

type testEnv struct {
	uc      *file.UseCase
	repo    repository.Repository
	storage adapter.Storage
	store   *memory.Store
}

func newTestEnv(t *testing.T, gemini adapter.Gemini) *testEnv {
	t.Helper()

	storage, err := adapter.NewDirStorage(t.TempDir())
	gt.NoError(t, err)

	repo := repository.NewMemory()
	store := memory.NewStore()

	return &testEnv{
		uc: file.New(file.NewInput{
			Repo:    repo,
			Storage: storage,
			Gemini:  gemini,
			Store:   store,
		}),
		repo:    repo,
		storage: storage,
		store:   store,
	}
}

func defaultGemini() *mockGemini {
	return &mockGemini{
		generateContent: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("generated"), nil
		},
		embedding: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
	}
}

func TestUploadTextFile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultGemini())

	meta, err := env.uc.Upload(ctx, &file.UploadInput{
		Name:     "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("mitochondria are the powerhouse of the cell"),
	})
	gt.NoError(t, err)
	gt.Equal(t, meta.Status, model.FileStatusCompleted)
	gt.V(t, meta.ChunkCount).Equal(1)
	gt.S(t, meta.Content).Contains("mitochondria")

	// Chunk landed in the memory store as a document record
	records := env.store.Query(memory.ByFile(meta.ID))
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Role, model.RoleDocument)
	gt.Equal(t, records[0].Meta.FileName, "notes.txt")

	// Bytes are downloadable
	reader, got, err := env.uc.Download(ctx, meta.ID)
	gt.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	gt.NoError(t, err)
	gt.S(t, string(data)).Contains("mitochondria")
	gt.Equal(t, got.Name, "notes.txt")
}

func TestUploadLargeTextSplitsChunks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultGemini())

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 100)
	meta, err := env.uc.Upload(ctx, &file.UploadInput{
		Name:     "long.txt",
		MimeType: "text/plain",
		Data:     []byte(text),
	})
	gt.NoError(t, err)
	gt.Equal(t, meta.Status, model.FileStatusCompleted)
	gt.True(t, meta.ChunkCount > 1)

	records := env.store.Query(memory.ByFile(meta.ID))
	gt.A(t, records).Length(meta.ChunkCount)
	for i, rec := range records {
		gt.V(t, rec.Meta.ChunkIndex).Equal(i)
	}
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultGemini())

	cases := []struct {
		name  string
		input *file.UploadInput
	}{
		{"empty name", &file.UploadInput{MimeType: "text/plain", Data: []byte("x")}},
		{"empty data", &file.UploadInput{Name: "a.txt", MimeType: "text/plain"}},
		{"unsupported type", &file.UploadInput{Name: "a.zip", MimeType: "application/zip", Data: []byte("x")}},
		{"oversized", &file.UploadInput{Name: "big.txt", MimeType: "text/plain", Data: make([]byte, model.MaxUploadSize+1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.uc.Upload(ctx, tc.input)
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, model.ErrTagValidation))
		})
	}
}

func TestUploadEmbeddingFailureStillCompletes(t *testing.T) {
	ctx := context.Background()
	gemini := defaultGemini()
	gemini.embedding = func(ctx context.Context, text string) ([]float32, error) {
		return nil, goerr.New("embedding down")
	}
	env := newTestEnv(t, gemini)

	meta, err := env.uc.Upload(ctx, &file.UploadInput{
		Name:     "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("some content"),
	})
	gt.NoError(t, err)
	gt.Equal(t, meta.Status, model.FileStatusCompleted)
	gt.V(t, meta.ChunkCount).Equal(0)
	gt.V(t, env.store.Count()).Equal(0)
}

func TestUploadCorruptPDFFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultGemini())

	meta, err := env.uc.Upload(ctx, &file.UploadInput{
		Name:     "bad.pdf",
		MimeType: "application/pdf",
		Data:     []byte("this is not a pdf"),
	})
	gt.NoError(t, err)
	gt.Equal(t, meta.Status, model.FileStatusFailed)

	// Bytes survive so the student can still download the original
	reader, _, err := env.uc.Download(ctx, meta.ID)
	gt.NoError(t, err)
	reader.Close()
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	var systemPrompts []string
	gemini := defaultGemini()
	gemini.generateContent = func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		if config != nil && config.SystemInstruction != nil {
			for _, part := range config.SystemInstruction.Parts {
				systemPrompts = append(systemPrompts, part.Text)
			}
		}
		return textResponse("the document says X"), nil
	}
	env := newTestEnv(t, gemini)

	meta, err := env.uc.Upload(ctx, &file.UploadInput{
		Name:     "paper.txt",
		MimeType: "text/plain",
		Data:     []byte("entropy always increases"),
	})
	gt.NoError(t, err)

	answer, err := env.uc.Analyze(ctx, meta.ID, "what does it say about entropy?")
	gt.NoError(t, err)
	gt.Equal(t, answer, "the document says X")

	found := false
	for _, p := range systemPrompts {
		if strings.Contains(p, "entropy always increases") {
			found = true
		}
	}
	gt.True(t, found)

	_, err = env.uc.Analyze(ctx, meta.ID, "  ")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagValidation))

	_, err = env.uc.Analyze(ctx, "missing", "question")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagNotFound))
}

func TestSearchWithin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultGemini())

	meta, err := env.uc.Upload(ctx, &file.UploadInput{
		Name:     "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("short document"),
	})
	gt.NoError(t, err)

	results, err := env.uc.SearchWithin(ctx, meta.ID, "document", 5)
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
	gt.S(t, results[0].Text).Contains("short document")

	_, err = env.uc.SearchWithin(ctx, meta.ID, "", 5)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagValidation))
}

func TestDeleteCleansUp(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultGemini())

	meta, err := env.uc.Upload(ctx, &file.UploadInput{
		Name:     "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("to be deleted"),
	})
	gt.NoError(t, err)
	gt.V(t, env.store.Count()).Equal(1)

	gt.NoError(t, env.uc.Delete(ctx, meta.ID))

	_, err = env.repo.GetFile(ctx, meta.ID)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagNotFound))
	gt.V(t, env.store.Count()).Equal(0)

	_, err = env.storage.Get(ctx, meta.StorageKey)
	gt.Error(t, err)

	err = env.uc.Delete(ctx, meta.ID)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagNotFound))
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultGemini())

	meta, err := env.uc.Upload(ctx, &file.UploadInput{
		Name:     "a.txt",
		MimeType: "text/plain",
		Data:     []byte("aaa"),
	})
	gt.NoError(t, err)

	got, err := env.uc.Get(ctx, meta.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Name, "a.txt")

	files, err := env.uc.List(ctx)
	gt.NoError(t, err)
	gt.A(t, files).Length(1)
}
