package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type FileID string

// NewFileID generates a new unique FileID
func NewFileID() FileID {
	return FileID(uuid.New().String())
}

type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusFailed     FileStatus = "failed"
)

// Validate checks if the file status is valid
func (s FileStatus) Validate() error {
	switch s {
	case FileStatusPending, FileStatusProcessing, FileStatusCompleted, FileStatusFailed:
		return nil
	default:
		return goerr.New("invalid file status", goerr.V("status", s))
	}
}

// FileKind is the processing category derived from the MIME type.
type FileKind string

const (
	FileKindImage       FileKind = "image"
	FileKindPDF         FileKind = "pdf"
	FileKindText        FileKind = "text"
	FileKindUnsupported FileKind = "unsupported"
)

// ClassifyMime maps a MIME type to its processing category.
func ClassifyMime(mimeType string) FileKind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch {
	case mt == "application/pdf":
		return FileKindPDF
	case strings.HasPrefix(mt, "image/"):
		return FileKindImage
	case strings.HasPrefix(mt, "text/"),
		mt == "application/json",
		mt == "application/xml":
		return FileKindText
	default:
		return FileKindUnsupported
	}
}

// MaxUploadSize is the byte limit for a single uploaded file.
const MaxUploadSize = 10 << 20

// UploadedFile is the metadata document for an uploaded file. The bytes
// themselves live in the storage adapter under StorageKey.
type UploadedFile struct {
	ID         FileID
	Name       string
	MimeType   string
	Size       int64
	StorageKey string
	Status     FileStatus
	// Content holds a short extracted-text preview for completed files,
	// or the failure reason for failed ones.
	Content    string
	ChunkCount int
	UploadedAt time.Time
	Metadata   map[string]string
}
