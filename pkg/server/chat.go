package server

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/usecase/chat"
)

// ChatResponse is the response body of POST /api/chat
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	FilesProcessed int    `json:"files_processed"`

	Explanation string   `json:"explanation,omitempty"`
	NextSteps   []string `json:"next_steps,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
}

// handleChat accepts a multipart form with a message, optional metadata
// fields and up to chat.MaxAttachments files
func (s *Server) handleChat(c echo.Context) error {
	input := &chat.RespondInput{
		Message:        c.FormValue("message"),
		ConversationID: model.ConversationID(c.FormValue("conversation_id")),
		UserID:         c.FormValue("user_id"),
		Subject:        c.FormValue("subject"),
		Difficulty:     c.FormValue("difficulty"),
		ExtraContext:   c.FormValue("context"),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		attachments, err := readAttachments(form.File["files"])
		if err != nil {
			return s.httpError(c, err)
		}
		input.Attachments = attachments
	}

	out, err := s.chat.Respond(c.Request().Context(), input)
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Response:       out.Text,
		ConversationID: string(out.ConversationID),
		FilesProcessed: out.FilesProcessed,
		Explanation:    out.Explanation,
		NextSteps:      out.NextSteps,
		Confidence:     out.Confidence,
	})
}

func readAttachments(headers []*multipart.FileHeader) ([]chat.Attachment, error) {
	attachments := make([]chat.Attachment, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, model.MaxUploadSize+1))
		f.Close()
		if err != nil {
			return nil, err
		}

		attachments = append(attachments, chat.Attachment{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	return attachments, nil
}
