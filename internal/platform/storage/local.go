package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/taskforge-app/taskforge-api/internal/domain"
	"github.com/taskforge-app/taskforge-api/internal/platform/logger"
)

// LocalStore implements FileStore on the local filesystem. Files land in a
// single flat directory and are served back under the configured public path
// by the API's static file route.
type LocalStore struct {
	dir        string
	publicPath string
	logger     *slog.Logger
	timeFunc   func() time.Time // Injectable for testing
}

// Ensure LocalStore implements FileStore interface
var _ FileStore = (*LocalStore)(nil)

// NewLocalStore creates a filesystem-backed FileStore rooted at dir, creating
// the directory if needed. publicPath is the URL prefix files are served
// under. If logger is nil, a default logger will be used.
func NewLocalStore(dir, publicPath string, logger *slog.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %q: %w", dir, err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &LocalStore{
		dir:        dir,
		publicPath: strings.TrimSuffix(publicPath, "/"),
		logger:     logger.With(slog.String("component", "local_file_store")),
		timeFunc:   time.Now,
	}, nil
}

// Save implements FileStore.Save
func (s *LocalStore) Save(
	ctx context.Context,
	filename, mimeType string,
	content io.Reader,
) (*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	storedName := storedFilename(s.timeFunc(), filename)
	target := filepath.Join(s.dir, storedName)

	// O_EXCL guards against the millisecond-prefix colliding.
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		log.Error("failed to create attachment file",
			slog.String("error", err.Error()),
			slog.String("filename", storedName))
		return nil, fmt.Errorf("failed to create attachment file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		log.Error("failed to write attachment content",
			slog.String("error", err.Error()),
			slog.String("filename", storedName))
		return nil, fmt.Errorf("failed to write attachment content: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("failed to close attachment file: %w", err)
	}

	log.Info("attachment stored",
		slog.String("filename", storedName),
		slog.String("mime_type", mimeType))

	return &domain.Attachment{
		Filename: storedName,
		Path:     path.Join(s.publicPath, storedName),
		MimeType: mimeType,
	}, nil
}

// Delete implements FileStore.Delete
// A missing file is treated as already deleted.
func (s *LocalStore) Delete(ctx context.Context, attachment *domain.Attachment) error {
	if attachment == nil {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	target := filepath.Join(s.dir, filepath.Base(attachment.Filename))
	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		log.Error("failed to delete attachment file",
			slog.String("error", err.Error()),
			slog.String("filename", attachment.Filename))
		return fmt.Errorf("failed to delete attachment file: %w", err)
	}

	log.Info("attachment deleted", slog.String("filename", attachment.Filename))
	return nil
}

// Dir returns the directory files are stored under, for wiring the static
// file route.
func (s *LocalStore) Dir() string {
	return s.dir
}

// storedFilename builds the on-disk name: the upload time in milliseconds,
// a dash, then the original name stripped of any directory components.
func storedFilename(now time.Time, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "attachment"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}
