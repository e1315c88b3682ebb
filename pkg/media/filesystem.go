package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vidora/vidora/pkg/storage"
)

// FilesystemUploader stores media on local disk for development. The files
// are served by the HTTP server's static file handler under baseURL.
type FilesystemUploader struct {
	root    string
	baseURL string
}

// NewFilesystemUploader ensures the root directory exists.
func NewFilesystemUploader(cfg storage.Config) (*FilesystemUploader, error) {
	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &FilesystemUploader{
		root:    cfg.MediaRoot,
		baseURL: strings.TrimRight(cfg.MediaBaseURL, "/"),
	}, nil
}

// Root returns the directory the static file handler should serve.
func (u *FilesystemUploader) Root() string {
	return u.root
}

// Upload writes the content to disk and returns its URL under the static
// mount.
func (u *FilesystemUploader) Upload(ctx context.Context, filename string, content io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(filename)
	path := filepath.Join(u.root, key)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close media file: %w", err)
	}

	return u.baseURL + "/" + key, nil
}
