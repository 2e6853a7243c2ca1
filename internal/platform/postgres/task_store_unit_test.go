package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge-app/taskforge-api/internal/domain"
)

func TestMarshalAttachment(t *testing.T) {
	t.Run("nil attachment maps to NULL", func(t *testing.T) {
		value, err := marshalAttachment(nil)
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("round trip", func(t *testing.T) {
		original := &domain.Attachment{
			Filename: "1717200000000-report.pdf",
			Path:     "/uploads/1717200000000-report.pdf",
			MimeType: "application/pdf",
		}

		value, err := marshalAttachment(original)
		require.NoError(t, err)

		decoded, err := unmarshalAttachment(value.([]byte))
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})
}

func TestUnmarshalAttachment(t *testing.T) {
	t.Run("NULL column yields nil", func(t *testing.T) {
		decoded, err := unmarshalAttachment(nil)
		require.NoError(t, err)
		assert.Nil(t, decoded)
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		_, err := unmarshalAttachment([]byte("{not json"))
		assert.Error(t, err)
	})
}

func TestNewPostgresTaskStoreRequiresDB(t *testing.T) {
	assert.Panics(t, func() {
		NewPostgresTaskStore(nil, nil)
	})
}
