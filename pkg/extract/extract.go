// Package extract turns uploaded file bytes into text the tutor can use,
// and produces thumbnails for image uploads.
package extract

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
)

// maxTextBytes caps extracted text so a huge upload cannot blow up the
// prompt. Chunking happens later; this is the raw extraction limit.
const maxTextBytes = 512 << 10

// Result is the outcome of extracting one file
type Result struct {
	Kind model.FileKind
	// Text is the extracted content for pdf/text files, or a short
	// description for images
	Text string
	// Width/Height are set for images only
	Width  int
	Height int
}

// Text extracts usable text from file bytes according to the MIME type.
// Unsupported types return a validation-tagged error so callers can decide
// whether to drop the file (chat attachments) or reject it (uploads).
func Text(name, mimeType string, data []byte) (*Result, error) {
	kind := model.ClassifyMime(mimeType)

	switch kind {
	case model.FileKindText:
		text := string(data)
		if len(text) > maxTextBytes {
			text = text[:maxTextBytes]
		}
		return &Result{Kind: kind, Text: text}, nil

	case model.FileKindPDF:
		text, err := pdfText(data)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: kind, Text: text}, nil

	case model.FileKindImage:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode image", goerr.V("name", name))
		}
		return &Result{
			Kind:   kind,
			Text:   fmt.Sprintf("[image %s, %dx%d pixels]", name, cfg.Width, cfg.Height),
			Width:  cfg.Width,
			Height: cfg.Height,
		}, nil

	default:
		return nil, goerr.New("unsupported file type",
			goerr.V("name", name), goerr.V("mime_type", mimeType),
			goerr.T(model.ErrTagValidation))
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to open pdf")
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", goerr.Wrap(err, "failed to extract pdf text")
	}

	text, err := io.ReadAll(io.LimitReader(plain, maxTextBytes))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read pdf text")
	}

	out := strings.TrimSpace(string(text))
	if out == "" {
		return "", goerr.New("pdf contains no extractable text")
	}
	return out, nil
}
