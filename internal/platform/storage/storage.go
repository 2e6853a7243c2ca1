// Package storage persists task attachments. Two backends implement the
// FileStore interface: a local filesystem store serving files from the API's
// own origin, and an S3-compatible object store (MinIO included).
package storage

import (
	"context"
	"io"

	"github.com/taskforge-app/taskforge-api/internal/domain"
)

// FileStore stores attachment content and reports the resulting metadata.
// Validation of size and content type happens before Save is called; the
// store only persists bytes it is handed.
type FileStore interface {
	// Save writes the content under a name derived from the original
	// filename, prefixed with the upload timestamp in milliseconds so
	// repeated uploads of the same file never collide. Returns the stored
	// attachment metadata with the public serving path.
	Save(ctx context.Context, filename, mimeType string, content io.Reader) (*domain.Attachment, error)

	// Delete removes a previously stored attachment. Deleting an attachment
	// that no longer exists is not an error.
	Delete(ctx context.Context, attachment *domain.Attachment) error
}
