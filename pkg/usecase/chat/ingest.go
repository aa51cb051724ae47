package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sensei-tutor/sensei/pkg/extract"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
)

// ingestAttachments extracts text from each attachment for the prompt
// context. Unsupported or unreadable files are dropped with a warning,
// not a failure of the whole request. Returns the rendered file context
// and the number of files actually processed.
func (u *UseCase) ingestAttachments(ctx context.Context, attachments []Attachment) (string, int) {
	var sb strings.Builder
	processed := 0

	for _, att := range attachments {
		if int64(len(att.Data)) > model.MaxUploadSize {
			logging.From(ctx).Warn("dropping oversized attachment",
				"name", att.Name, "size", len(att.Data))
			continue
		}

		result, err := extract.Text(att.Name, att.MimeType, att.Data)
		if err != nil {
			logging.From(ctx).Warn("dropping unprocessable attachment",
				"name", att.Name, "mime_type", att.MimeType, "error", err)
			continue
		}

		fmt.Fprintf(&sb, "--- attached file: %s ---\n%s\n", att.Name, result.Text)
		processed++
	}

	return strings.TrimRight(sb.String(), "\n"), processed
}
