package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/taskforge-app/taskforge-api/internal/config"
	"github.com/taskforge-app/taskforge-api/internal/domain"
	"github.com/taskforge-app/taskforge-api/internal/platform/logger"
)

// s3API is the subset of the S3 client the store uses, extracted so tests
// can substitute a fake.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements FileStore against an S3-compatible object store.
type S3Store struct {
	client   s3API
	bucket   string
	baseURL  string
	logger   *slog.Logger
	timeFunc func() time.Time // Injectable for testing
}

// Ensure S3Store implements FileStore interface
var _ FileStore = (*S3Store)(nil)

// NewS3Store creates an object-store-backed FileStore from the storage
// configuration. Credentials are injected explicitly rather than discovered
// from the ambient environment. A non-empty endpoint targets an
// S3-compatible service such as MinIO.
func NewS3Store(
	ctx context.Context,
	cfg config.StorageConfig,
	logger *slog.Logger,
) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket cannot be empty")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	if logger == nil {
		logger = slog.Default()
	}

	return &S3Store{
		client:   client,
		bucket:   cfg.S3Bucket,
		baseURL:  objectBaseURL(cfg),
		logger:   logger.With(slog.String("component", "s3_file_store")),
		timeFunc: time.Now,
	}, nil
}

// Save implements FileStore.Save
func (s *S3Store) Save(
	ctx context.Context,
	filename, mimeType string,
	content io.Reader,
) (*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	key := storedFilename(s.timeFunc(), filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		log.Error("failed to upload attachment",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	log.Info("attachment uploaded",
		slog.String("key", key),
		slog.String("mime_type", mimeType))

	return &domain.Attachment{
		Filename: key,
		Path:     s.baseURL + "/" + key,
		MimeType: mimeType,
	}, nil
}

// Delete implements FileStore.Delete
// S3 DeleteObject succeeds for missing keys, so no existence check is needed.
func (s *S3Store) Delete(ctx context.Context, attachment *domain.Attachment) error {
	if attachment == nil {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	key := filepath.Base(attachment.Filename)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error("failed to delete attachment",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	log.Info("attachment deleted", slog.String("key", key))
	return nil
}

// objectBaseURL derives the public URL prefix objects are reachable under:
// path-style against a custom endpoint, virtual-hosted style against AWS.
func objectBaseURL(cfg config.StorageConfig) string {
	if cfg.S3Endpoint != "" {
		return strings.TrimSuffix(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}
