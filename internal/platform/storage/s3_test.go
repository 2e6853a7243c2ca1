package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge-app/taskforge-api/internal/config"
	"github.com/taskforge-app/taskforge-api/internal/domain"
)

type fakeS3Client struct {
	putInput    *s3.PutObjectInput
	deleteInput *s3.DeleteObjectInput
	putErr      error
	deleteErr   error
}

func (f *fakeS3Client) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	f.putInput = params
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3Client) DeleteObject(
	_ context.Context,
	params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	f.deleteInput = params
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func newTestS3Store(client *fakeS3Client) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  "attachments",
		baseURL: "http://127.0.0.1:9000/attachments",
		timeFunc: func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

func TestS3StoreSave(t *testing.T) {
	client := &fakeS3Client{}
	store := newTestS3Store(client)

	attachment, err := store.Save(
		context.Background(),
		"report.pdf",
		"application/pdf",
		strings.NewReader("%PDF-1.4"),
	)
	require.NoError(t, err)

	require.NotNil(t, client.putInput)
	assert.Equal(t, "attachments", *client.putInput.Bucket)
	assert.Equal(t, "1748779200000-report.pdf", *client.putInput.Key)
	assert.Equal(t, "application/pdf", *client.putInput.ContentType)

	body, err := io.ReadAll(client.putInput.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))

	assert.Equal(t, "1748779200000-report.pdf", attachment.Filename)
	assert.Equal(t, "http://127.0.0.1:9000/attachments/1748779200000-report.pdf", attachment.Path)
}

func TestS3StoreSaveError(t *testing.T) {
	client := &fakeS3Client{putErr: assert.AnError}
	store := newTestS3Store(client)

	_, err := store.Save(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestS3StoreDelete(t *testing.T) {
	client := &fakeS3Client{}
	store := newTestS3Store(client)

	err := store.Delete(context.Background(), &domain.Attachment{
		Filename: "1748779200000-report.pdf",
		Path:     "http://127.0.0.1:9000/attachments/1748779200000-report.pdf",
		MimeType: "application/pdf",
	})
	require.NoError(t, err)

	require.NotNil(t, client.deleteInput)
	assert.Equal(t, "attachments", *client.deleteInput.Bucket)
	assert.Equal(t, "1748779200000-report.pdf", *client.deleteInput.Key)

	assert.NoError(t, store.Delete(context.Background(), nil))
}

func TestObjectBaseURL(t *testing.T) {
	withEndpoint := objectBaseURL(config.StorageConfig{
		S3Endpoint: "http://127.0.0.1:9000/",
		S3Bucket:   "attachments",
	})
	assert.Equal(t, "http://127.0.0.1:9000/attachments", withEndpoint)

	withoutEndpoint := objectBaseURL(config.StorageConfig{
		S3Bucket: "attachments",
		S3Region: "eu-west-1",
	})
	assert.Equal(t, "https://attachments.s3.eu-west-1.amazonaws.com", withoutEndpoint)
}
