package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3API is the subset of the S3 client used to upload cache artifacts.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// CacheStore uploads run artifacts to the cache bucket.
type CacheStore struct {
	client S3API
	bucket string
	log    *zap.Logger
}

// NewCacheStore creates a store writing to the given bucket.
func NewCacheStore(client S3API, bucket string, log *zap.Logger) *CacheStore {
	return &CacheStore{client: client, bucket: bucket, log: log}
}

// Upload serializes payload as JSON and writes it under key. Objects are
// stored with server-side encryption.
func (c *CacheStore) Upload(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}

	if _, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(c.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String("application/json"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}); err != nil {
		c.log.Error("cache upload failed",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to upload cache: %w", err)
	}

	c.log.Info("cache uploaded", zap.String("key", key))
	return nil
}
