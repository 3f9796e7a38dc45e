package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"

	common_models "go-analytics/internal/common/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps artifacts as objects in one bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) Type() string { return StorageMinio }

func (s *MinioStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err == nil {
		return "", ErrExists
	}
	if !isNoSuchKey(err) {
		return "", fmt.Errorf("minio stat %s: %w", name, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", name, err)
	}
	return s.bucket + "/" + name, nil
}

func (s *MinioStore) Get(ctx context.Context, name string) ([]byte, string, error) {
	if err := ValidateName(name); err != nil {
		return nil, "", err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if isNoSuchKey(err) {
			return nil, "", common_models.NewError(common_models.KindNotFound, "artifact %s not found", name)
		}
		return nil, "", err
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", err
	}
	return data, info.ContentType, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
