// Package media hosts uploaded binary files (avatars, cover images) and
// returns opaque URLs that are stored on the account verbatim. Backends: S3
// (or any S3-compatible store) and the local filesystem for development.
package media

import (
	"context"
	"io"
	"path/filepath"

	"github.com/google/uuid"
)

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader, contentType string) (string, error)
}

// objectKey builds a collision-free storage key keeping the original
// extension so content sniffing keeps working downstream.
func objectKey(filename string) string {
	return uuid.NewString() + filepath.Ext(filename)
}
