package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BlobStore is the content store file bytes live in, addressed by an opaque
// key. Upload returns the public URL the object is retrievable from. Remove
// deletes by the same key; callers that treat blob cleanup as non-fatal log
// and swallow its error.
type BlobStore interface {
	Upload(ctx context.Context, key string, content io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// MinioStore implements BlobStore on a single MinIO bucket.
type MinioStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
}

// NewMinioStore connects to MinIO from environment configuration and creates
// the bucket if it does not exist yet.
func NewMinioStore() (*MinioStore, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000" // Default fallback
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	if accessKey == "" {
		accessKey = "minioadmin" // Default fallback
	}

	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if secretKey == "" {
		secretKey = "minioadmin" // Default fallback
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "filehaven"
	}

	useSSL := false // Set to true if using HTTPS

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("Created bucket: %s", bucket)
	}

	fmt.Println("✅ Connected to MinIO")
	return &MinioStore{client: client, bucket: bucket, endpoint: endpoint}, nil
}

func (s *MinioStore) Upload(ctx context.Context, key string, content io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s/%s/%s", s.endpoint, s.bucket, key), nil
}

func (s *MinioStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
