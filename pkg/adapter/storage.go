package adapter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
)

// Storage is the interface for uploaded file byte storage
type Storage interface {
	// Put returns a writer to save file bytes to storage
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	// Get loads file bytes from storage
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes file bytes from storage
	Delete(ctx context.Context, key string) error
}

// storageClient implements Storage interface using Cloud Storage
type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage client
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	bucket := s.client.Bucket(s.bucketName)
	obj := bucket.Object(key)
	writer := obj.NewWriter(ctx)
	return writer, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	bucket := s.client.Bucket(s.bucketName)
	obj := bucket.Object(key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.Value("key", key), goerr.T(model.ErrTagNotFound))
	}

	return reader, nil
}

func (s *storageClient) Delete(ctx context.Context, key string) error {
	bucket := s.client.Bucket(s.bucketName)
	if err := bucket.Object(key).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete from storage", goerr.Value("key", key))
	}
	return nil
}

// dirStorage implements Storage on a local directory, for development and tests
type dirStorage struct {
	baseDir string
}

// NewDirStorage creates a Storage backed by a local directory
func NewDirStorage(baseDir string) (Storage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create storage directory", goerr.Value("dir", baseDir))
	}
	return &dirStorage{baseDir: baseDir}, nil
}

func (s *dirStorage) resolve(key string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.baseDir)+string(os.PathSeparator)) {
		return "", goerr.New("storage key escapes base directory", goerr.Value("key", key))
	}
	return path, nil
}

func (s *dirStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create object directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create object file", goerr.Value("key", key))
	}
	return f, nil
}

func (s *dirStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object file", goerr.Value("key", key), goerr.T(model.ErrTagNotFound))
	}
	return f, nil
}

func (s *dirStorage) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return goerr.Wrap(err, "failed to remove object file", goerr.Value("key", key))
	}
	return nil
}
