package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const objectPrefix = "images/"

// Storage keeps advertisement pictures and avatars in a MinIO/S3 bucket.
type Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewStorage connects to the endpoint and makes sure the bucket exists.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logger.Logger) (*Storage, error) {
	log.Info("Initializing S3 MinIO storage",
		zap.String("endpoint", endpoint), zap.String("bucket", bucket), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", bucket, err)
		}
		log.Info("S3 bucket created", zap.String("bucket", bucket))
	}

	return &Storage{client: client, bucket: bucket, logger: log.Named("S3Storage")}, nil
}

// ObjectKey returns a unique object key that keeps the original extension.
func ObjectKey(originalFileName string) string {
	return objectPrefix + uuid.New().String() + strings.ToLower(filepath.Ext(originalFileName))
}

// Upload stores data and returns its public URL.
func (s *Storage) Upload(ctx context.Context, originalFileName string, data []byte) (string, error) {
	objectKey := ObjectKey(originalFileName)

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  http.DetectContentType(data),
		UserMetadata: map[string]string{"original-filename": originalFileName},
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("key", objectKey), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}
	s.logger.Debug("Image uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))

	return s.urlFor(objectKey), nil
}

// Delete removes the object behind a URL produced by Upload.
func (s *Storage) Delete(ctx context.Context, url string) error {
	key, ok := s.keyFor(url)
	if !ok {
		return fmt.Errorf("%w: %s is not an object of bucket %s", domain.ErrInvalidInput, url, s.bucket)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) urlFor(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key)
}

func (s *Storage) keyFor(url string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.client.EndpointURL().String(), s.bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
