package file

import (
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/adapter"
	"github.com/sensei-tutor/sensei/pkg/extract"
	"github.com/sensei-tutor/sensei/pkg/model"
	"google.golang.org/genai"
)

// Analyze answers a question about one uploaded document by re-extracting
// its text and asking the generation API with the document as context.
func (u *UseCase) Analyze(ctx context.Context, id model.FileID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", goerr.New("question is empty", goerr.T(model.ErrTagValidation))
	}

	meta, err := u.repo.GetFile(ctx, id)
	if err != nil {
		return "", err
	}

	reader, err := u.storage.Get(ctx, meta.StorageKey)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, model.MaxUploadSize))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read stored file", goerr.V("id", id))
	}

	result, err := extract.Text(meta.Name, meta.MimeType, data)
	if err != nil {
		return "", goerr.Wrap(err, "failed to extract document text", goerr.V("id", id))
	}

	systemPrompt := "You are a study assistant. Answer the student's question using the " +
		"following document. Quote the relevant passage when you can.\n\n" +
		"Document (" + meta.Name + "):\n" + result.Text

	resp, err := u.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(question, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		},
	)
	if err != nil {
		return "", goerr.Wrap(err, "document analysis failed", goerr.T(model.ErrTagProvider))
	}

	text := adapter.ResponseText(resp)
	if text == "" {
		return "", goerr.New("document analysis returned no text", goerr.T(model.ErrTagProvider))
	}
	return text, nil
}
