package server

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/usecase/file"
)

// FileResponse is the metadata representation of an uploaded file
type FileResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	Status     string    `json:"status"`
	Preview    string    `json:"preview,omitempty"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toFileResponse(f *model.UploadedFile) FileResponse {
	return FileResponse{
		ID:         string(f.ID),
		Name:       f.Name,
		MimeType:   f.MimeType,
		Size:       f.Size,
		Status:     string(f.Status),
		Preview:    f.Content,
		ChunkCount: f.ChunkCount,
		UploadedAt: f.UploadedAt,
	}
}

func (s *Server) handleUploadFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return s.httpError(c, goerr.Wrap(err, "missing file field", goerr.T(model.ErrTagValidation)))
	}

	f, err := fh.Open()
	if err != nil {
		return s.httpError(c, goerr.Wrap(err, "failed to open upload"))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, model.MaxUploadSize+1))
	if err != nil {
		return s.httpError(c, goerr.Wrap(err, "failed to read upload"))
	}

	meta, err := s.files.Upload(c.Request().Context(), &file.UploadInput{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusCreated, toFileResponse(meta))
}

func (s *Server) handleGetFile(c echo.Context) error {
	meta, err := s.files.Get(c.Request().Context(), model.FileID(c.Param("id")))
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, toFileResponse(meta))
}

func (s *Server) handleDownloadFile(c echo.Context) error {
	reader, meta, err := s.files.Download(c.Request().Context(), model.FileID(c.Param("id")))
	if err != nil {
		return s.httpError(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+meta.Name+`"`)
	return c.Stream(http.StatusOK, meta.MimeType, reader)
}

// AnalyzeRequest is the request body of POST /api/files/:id/analyze
type AnalyzeRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAnalyzeFile(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return s.httpError(c, goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation)))
	}

	answer, err := s.files.Analyze(c.Request().Context(), model.FileID(c.Param("id")), req.Question)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

// SearchFileRequest is the request body of POST /api/files/:id/search
type SearchFileRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) handleSearchFile(c echo.Context) error {
	var req SearchFileRequest
	if err := c.Bind(&req); err != nil {
		return s.httpError(c, goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation)))
	}

	results, err := s.files.SearchWithin(c.Request().Context(), model.FileID(c.Param("id")), req.Query, req.Limit)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleDeleteFile(c echo.Context) error {
	if err := s.files.Delete(c.Request().Context(), model.FileID(c.Param("id"))); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
