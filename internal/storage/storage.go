// Package storage mints signed URLs for pitch videos in an S3-compatible
// bucket (AWS S3, Cloudflare R2, MinIO). Clients upload and download directly
// against the bucket; the API only hands out time-limited URLs and keeps the
// object key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/caerus-app/caerus-backend/internal/config"
)

// DefaultContentType is used when the client does not name one.
const DefaultContentType = "video/mp4"

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

// Signer hands out presigned URLs for object keys.
type Signer interface {
	UploadURL(ctx context.Context, key, contentType string) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// VideoKey returns a fresh object key "videos/<uuid>/<filename>". Directory
// components in filename are dropped.
func VideoKey(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "video.mp4"
	}
	return "videos/" + uuid.NewString() + "/" + name
}

// S3Signer presigns PUT and GET requests with SigV4.
type S3Signer struct {
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
	presign     *s3.PresignClient
}

// NewS3Signer builds a signer from cfg. A custom endpoint switches to
// path-style addressing, which R2 and MinIO expect.
func NewS3Signer(cfg config.StorageConfig) (*S3Signer, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return &S3Signer{
		bucket:      cfg.Bucket,
		uploadTTL:   cfg.UploadTTL,
		downloadTTL: cfg.DownloadTTL,
		presign:     s3.NewPresignClient(s3.New(opts)),
	}, nil
}

// UploadURL presigns a PUT of key with the given content type.
func (s *S3Signer) UploadURL(ctx context.Context, key, contentType string) (string, error) {
	if contentType == "" {
		contentType = DefaultContentType
	}
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}
	return req.URL, nil
}

// DownloadURL presigns a GET of key.
func (s *S3Signer) DownloadURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.downloadTTL))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return req.URL, nil
}

// Disabled is the Signer used when storage is not configured. Every call
// fails with ErrDisabled.
type Disabled struct{}

func (Disabled) UploadURL(context.Context, string, string) (string, error) { return "", ErrDisabled }
func (Disabled) DownloadURL(context.Context, string) (string, error)       { return "", ErrDisabled }

// New returns an S3Signer when cfg is enabled, else Disabled.
func New(cfg config.StorageConfig) Signer {
	if s, err := NewS3Signer(cfg); err == nil {
		return s
	}
	return Disabled{}
}
