// Package storage implements the object storage boundary for product
// images: upload a file, get back a public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// LocalUploader writes uploads to a directory served as static files
// under a public base URL.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates the upload directory if needed.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload stores the content under a random name that keeps the
// original extension, and returns the public URL.
func (u *LocalUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext
	path := filepath.Join(u.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return u.baseURL + "/" + name, nil
}

// Dir returns the directory uploads are written to, for static serving.
func (u *LocalUploader) Dir() string {
	return u.dir
}
