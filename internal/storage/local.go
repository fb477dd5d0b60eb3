// Package storage persists uploaded files on the local disk. Files are
// stored under a generated name; the original name lives only in the
// attachment record.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"taskflow_backend/internal/config"
)

// StoredFile describes one persisted upload.
type StoredFile struct {
	Filename string
	Path     string
	URL      string
	Size     int64
}

type Storage interface {
	Save(file *multipart.FileHeader) (*StoredFile, error)
	Remove(path string) error
	Open(path string) (*os.File, error)
}

type localStorage struct {
	basePath string
	baseURL  string
	maxSize  int64
}

func NewLocalStorage(cfg *config.Config) (Storage, error) {
	if err := os.MkdirAll(cfg.Storage.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &localStorage{
		basePath: cfg.Storage.BasePath,
		baseURL:  cfg.Storage.BaseURL,
		maxSize:  cfg.Storage.MaxSize,
	}, nil
}

func (s *localStorage) Save(file *multipart.FileHeader) (*StoredFile, error) {
	if s.maxSize > 0 && file.Size > s.maxSize {
		return nil, fmt.Errorf("file exceeds the %d byte limit", s.maxSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// The stored name is random; the extension is kept so static
	// serving can infer a content type.
	filename := uuid.NewString() + filepath.Ext(file.Filename)
	path := filepath.Join(s.basePath, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &StoredFile{
		Filename: filename,
		Path:     path,
		URL:      s.baseURL + "/" + filename,
		Size:     size,
	}, nil
}

func (s *localStorage) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *localStorage) Open(path string) (*os.File, error) {
	return os.Open(path)
}
