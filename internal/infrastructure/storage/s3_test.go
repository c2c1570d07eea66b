package storage

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "msds",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	}
}

func TestNewS3DocumentStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3DocumentStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("applies defaults", func(t *testing.T) {
		s, err := NewS3DocumentStorage(validConfig())
		require.NoError(t, err)
		assert.Equal(t, "msds", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.linkTTL)
	})

	t.Run("options override config", func(t *testing.T) {
		s, err := NewS3DocumentStorage(validConfig(), WithLinkTTL(time.Hour), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.linkTTL)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("", false)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", got)

	got, err = normalizeEndpoint("minio.lab:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "https://minio.lab:9000", got)

	got, err = normalizeEndpoint("http://minio.lab", true)
	require.NoError(t, err)
	assert.Equal(t, "http://minio.lab", got)
}

func TestS3DocumentStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3DocumentStorage(validConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("presigns a path-style URL", func(t *testing.T) {
		link, expiresAt, err := s.GenerateDownloadURL(ctx, "msds/abc/sheet.pdf", 10*time.Minute)
		require.NoError(t, err)

		u, err := url.Parse(link)
		require.NoError(t, err)
		assert.Equal(t, "localhost:9000", u.Host)
		assert.Equal(t, "/msds/msds/abc/sheet.pdf", u.Path)
		assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("falls back to configured ttl", func(t *testing.T) {
		link, _, err := s.GenerateDownloadURL(ctx, "k", 0)
		require.NoError(t, err)
		u, err := url.Parse(link)
		require.NoError(t, err)
		assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, _, err := s.GenerateDownloadURL(ctx, "", time.Minute)
		assert.ErrorIs(t, err, ErrEmptyKey)
	})
}

func TestS3DocumentStorage_EmptyKey(t *testing.T) {
	s, err := NewS3DocumentStorage(validConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Upload(ctx, "", []byte("x"), "application/pdf"), ErrEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), ErrEmptyKey)
	_, err = s.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

// Runs against a live MinIO when LABSTOCK_TEST_S3_ENDPOINT is set.
func TestS3DocumentStorage_RoundTrip(t *testing.T) {
	endpoint := os.Getenv("LABSTOCK_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("LABSTOCK_TEST_S3_ENDPOINT not set")
	}
	cfg := &config.StorageConfig{
		Bucket:       "labstock-test",
		AccessKey:    os.Getenv("LABSTOCK_TEST_S3_ACCESS_KEY"),
		SecretKey:    os.Getenv("LABSTOCK_TEST_S3_SECRET_KEY"),
		Endpoint:     endpoint,
		UsePathStyle: true,
	}
	s, err := NewS3DocumentStorage(cfg)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))

	key := "msds/round-trip.pdf"
	require.NoError(t, s.Upload(ctx, key, []byte("%PDF-1.4"), "application/pdf"))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteObject(ctx, key))
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
