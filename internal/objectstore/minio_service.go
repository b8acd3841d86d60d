// Package objectstore keeps reference audio in a MinIO bucket. Samples are
// uploaded once and fetched to local temp files when the local inference
// backends need them.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config carries the MinIO connection settings.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// Client holds the MinIO client and bucket name.
type Client struct {
	mc     *minio.Client
	bucket string
}

// New connects to MinIO and ensures the configured bucket exists.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("objectstore: endpoint, access key, secret key and bucket name must be set")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if MinIO bucket '%s' exists: %w", cfg.BucketName, err)
	}
	if !exists {
		log.Printf("MinIO bucket '%s' does not exist, creating it", cfg.BucketName)
		if err := mc.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create MinIO bucket '%s': %w", cfg.BucketName, err)
		}
	}

	return &Client{mc: mc, bucket: cfg.BucketName}, nil
}

// Upload stores a file in the bucket under a unique key that preserves the
// original file extension, and returns the key.
func (c *Client) Upload(ctx context.Context, originalFilename string, reader io.Reader, size int64, contentType string) (string, error) {
	objectKey := uuid.New().String() + filepath.Ext(originalFilename)

	uploadInfo, err := c.mc.PutObject(ctx, c.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to MinIO (bucket: %s, object: %s): %w", c.bucket, objectKey, err)
	}

	log.Printf("uploaded '%s' (%d bytes) to MinIO, ETag %s", objectKey, uploadInfo.Size, uploadInfo.ETag)
	return objectKey, nil
}

// FetchToTemp downloads an object to a temp file and returns the local
// path. The file keeps the object's extension so the inference backends
// can recognize the audio format. The caller removes the file when done.
func (c *Client) FetchToTemp(ctx context.Context, objectKey string) (string, error) {
	object, err := c.mc.GetObject(ctx, c.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get object '%s' from bucket '%s': %w", objectKey, c.bucket, err)
	}
	defer object.Close()

	tmp, err := os.CreateTemp("", "asrbench-*"+filepath.Ext(objectKey))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for object '%s': %w", objectKey, err)
	}

	if _, err := io.Copy(tmp, object); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to download object '%s': %w", objectKey, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file for object '%s': %w", objectKey, err)
	}
	return tmp.Name(), nil
}

// Reader returns an object as an io.ReadCloser plus its size. The caller
// is responsible for closing the reader.
func (c *Client) Reader(ctx context.Context, objectKey string) (io.ReadCloser, int64, error) {
	object, err := c.mc.GetObject(ctx, c.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", objectKey, c.bucket, err)
	}

	stat, err := object.Stat()
	if err != nil {
		object.Close()
		return nil, 0, fmt.Errorf("failed to get object stats for '%s': %w", objectKey, err)
	}
	return object, stat.Size, nil
}

// Delete removes an object from the bucket.
func (c *Client) Delete(ctx context.Context, objectKey string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object '%s' from MinIO bucket '%s': %w", objectKey, c.bucket, err)
	}
	return nil
}
