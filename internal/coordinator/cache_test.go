package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

type fakeS3 struct {
	err   error
	input *s3.PutObjectInput
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestCacheStoreUpload(t *testing.T) {
	fake := &fakeS3{}
	store := NewCacheStore(fake, "coordinator-cache", zap.NewNop())

	payload := cachePayload{
		Timestamp:     "2026-08-25T06:30:00Z",
		CoordinatorID: "daily-coordinator-001",
		CacheEntries:  10,
		Status:        "cached",
	}
	if err := store.Upload(context.Background(), "cache/daily-coordinator-001/2026-08-25.json", payload); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if got := aws.ToString(fake.input.Bucket); got != "coordinator-cache" {
		t.Errorf("bucket = %q, want %q", got, "coordinator-cache")
	}
	if got := aws.ToString(fake.input.Key); got != "cache/daily-coordinator-001/2026-08-25.json" {
		t.Errorf("key = %q", got)
	}
	if got := aws.ToString(fake.input.ContentType); got != "application/json" {
		t.Errorf("content type = %q, want %q", got, "application/json")
	}
	if fake.input.ServerSideEncryption != types.ServerSideEncryptionAes256 {
		t.Errorf("server side encryption = %q, want %q", fake.input.ServerSideEncryption, types.ServerSideEncryptionAes256)
	}

	body, err := io.ReadAll(fake.input.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var got cachePayload
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if got != payload {
		t.Errorf("body = %+v, want %+v", got, payload)
	}
}

func TestCacheStoreUploadUnencodablePayload(t *testing.T) {
	fake := &fakeS3{}
	store := NewCacheStore(fake, "coordinator-cache", zap.NewNop())

	if err := store.Upload(context.Background(), "cache/x.json", make(chan int)); err == nil {
		t.Fatal("Upload() expected error, got nil")
	}
	if fake.input != nil {
		t.Error("PutObject called for unencodable payload")
	}
}

func TestCacheStoreUploadError(t *testing.T) {
	store := NewCacheStore(&fakeS3{err: errors.New("denied")}, "coordinator-cache", zap.NewNop())

	if err := store.Upload(context.Background(), "cache/x.json", map[string]string{"a": "b"}); err == nil {
		t.Error("Upload() expected error, got nil")
	}
}
