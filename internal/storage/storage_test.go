package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caerus-app/caerus-backend/internal/config"
)

func testConfig() config.StorageConfig {
	return config.StorageConfig{
		Bucket:      "pitches",
		Endpoint:    "https://account.r2.example.com",
		AccessKeyID: "AKIDEXAMPLE",
		SecretKey:   "secret",
		Region:      "auto",
		UploadTTL:   15 * time.Minute,
		DownloadTTL: time.Hour,
	}
}

func TestVideoKey(t *testing.T) {
	k := VideoKey("pitch.mp4")
	parts := strings.Split(k, "/")
	require.Len(t, parts, 3)
	assert.Equal(t, "videos", parts[0])
	assert.Len(t, parts[1], 36)
	assert.Equal(t, "pitch.mp4", parts[2])

	assert.True(t, strings.HasSuffix(VideoKey("../../etc/passwd"), "/passwd"))
	assert.True(t, strings.HasSuffix(VideoKey(`C:\clips\demo.mov`), "/demo.mov"))
	assert.True(t, strings.HasSuffix(VideoKey(""), "/video.mp4"))
	assert.NotEqual(t, VideoKey("a.mp4"), VideoKey("a.mp4"))
}

func TestS3Signer_PresignsWithTTL(t *testing.T) {
	s, err := NewS3Signer(testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	up, err := s.UploadURL(ctx, "videos/x/a.mp4", "")
	require.NoError(t, err)
	u, err := url.Parse(up)
	require.NoError(t, err)
	assert.Equal(t, "account.r2.example.com", u.Host)
	assert.Equal(t, "/pitches/videos/x/a.mp4", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	down, err := s.DownloadURL(ctx, "videos/x/a.mp4")
	require.NoError(t, err)
	u, err = url.Parse(down)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNew_DisabledWithoutCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.SecretKey = ""
	s := New(cfg)
	_, ok := s.(Disabled)
	require.True(t, ok)

	_, err := s.UploadURL(context.Background(), "k", "video/mp4")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = s.DownloadURL(context.Background(), "k")
	assert.ErrorIs(t, err, ErrDisabled)
}
