// Package secrets retrieves credentials from AWS Secrets Manager. Values are
// fetched on first use and cached for the life of the process, so repeated
// invocations on a warm instance never re-read the store.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// API is the subset of the Secrets Manager client the cache depends on.
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Cache fetches secret strings and keeps them in memory.
type Cache struct {
	client API
	log    *zap.Logger

	mu     sync.Mutex
	values map[string]string
}

// NewCache creates a cache backed by the given Secrets Manager client.
func NewCache(client API, log *zap.Logger) *Cache {
	return &Cache{
		client: client,
		log:    log,
		values: make(map[string]string),
	}
}

// String returns the secret's string value, fetching it on first use.
func (c *Cache) String(ctx context.Context, secretID string) (string, error) {
	if secretID == "" {
		return "", fmt.Errorf("secret id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.values[secretID]; ok {
		return value, nil
	}

	out, err := c.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			c.log.Error("unable to retrieve secret",
				zap.String("secret_id", secretID),
				zap.String("code", apiErr.ErrorCode()),
				zap.Error(err))
		} else {
			c.log.Error("unable to retrieve secret",
				zap.String("secret_id", secretID),
				zap.Error(err))
		}
		return "", fmt.Errorf("failed to retrieve secret %s: %w", secretID, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("secret %s has no string value", secretID)
	}

	c.values[secretID] = *out.SecretString
	return *out.SecretString, nil
}

// JSON unmarshals the secret's string value into v.
func (c *Cache) JSON(ctx context.Context, secretID string, v any) error {
	value, err := c.String(ctx, secretID)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), v); err != nil {
		return fmt.Errorf("secret %s is not valid JSON: %w", secretID, err)
	}
	return nil
}

// NameFromARN extracts the secret name from a full Secrets Manager ARN. Plain
// names pass through unchanged; both forms are accepted by the API.
func NameFromARN(arn string) string {
	if idx := strings.LastIndex(arn, ":"); idx >= 0 {
		return arn[idx+1:]
	}
	return arn
}
