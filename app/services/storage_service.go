// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/vasooli-labs/vasooli/config"
)

// StorageService persists uploaded debtor files in S3-compatible object storage
type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3StorageService implements StorageService on the AWS S3 API
type S3StorageService struct {
	cfg    config.StorageConfig
	client *s3.S3
}

// NewS3StorageService creates a storage service from config. Works against
// AWS as well as S3-compatible endpoints like MinIO and DigitalOcean Spaces.
func NewS3StorageService(cfg config.StorageConfig) (*S3StorageService, error) {
	awsCfg := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &S3StorageService{
		cfg:    cfg,
		client: s3.New(sess),
	}, nil
}

// Upload stores the object and returns its public URL
func (s *S3StorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return s.objectURL(key), nil
}

func (s *S3StorageService) objectURL(key string) string {
	if s.cfg.BucketURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.cfg.BucketURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// MockStorageService implements StorageService for testing
type MockStorageService struct {
	Objects map[string][]byte
}

// NewMockStorageService creates an in-memory storage service
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{
		Objects: make(map[string][]byte),
	}
}

// Upload stores the object in memory
func (m *MockStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.Objects[key] = data
	return fmt.Sprintf("https://storage.local/%s", key), nil
}
