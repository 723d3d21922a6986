// Package crossbus republishes coordinator results to a GCP Pub/Sub topic so
// subscribers outside AWS receive them.
package crossbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
)

// publishTimeout bounds the wait for the server-assigned message ID.
const publishTimeout = 10 * time.Second

// SecretSource resolves raw secret strings by name.
type SecretSource interface {
	String(ctx context.Context, secretID string) (string, error)
}

// Publisher publishes JSON payloads to the configured Pub/Sub topic. The
// underlying client is built on first use from a service account key held in
// the secret store, then reused for the life of the process.
type Publisher struct {
	cfg     config.CrossBus
	secrets SecretSource
	log     *zap.Logger

	newClient func(ctx context.Context, projectID string, key []byte) (*pubsub.Client, error)

	mu    sync.Mutex
	topic *pubsub.Topic
}

// NewPublisher creates a publisher for the configured project and topic.
func NewPublisher(cfg config.CrossBus, source SecretSource, log *zap.Logger) *Publisher {
	return &Publisher{
		cfg:       cfg,
		secrets:   source,
		log:       log,
		newClient: newPubSubClient,
	}
}

func newPubSubClient(ctx context.Context, projectID string, key []byte) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON(key))
}

// Publish serializes payload to JSON and publishes it with routing
// attributes. It returns the server-assigned message ID.
func (p *Publisher) Publish(ctx context.Context, payload map[string]any) (string, error) {
	topic, err := p.topicHandle(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	res := topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes(payload),
	})

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	id, err := res.Get(ctx)
	if err != nil {
		p.log.Error("publish failed",
			zap.String("topic", p.cfg.Topic),
			zap.Error(err))
		return "", fmt.Errorf("failed to publish to %s: %w", p.cfg.Topic, err)
	}

	p.log.Info("published message",
		zap.String("message_id", id),
		zap.String("topic", p.cfg.Topic))
	return id, nil
}

// topicHandle returns the cached topic, building the client on first use.
func (p *Publisher) topicHandle(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.topic != nil {
		return p.topic, nil
	}

	key, err := p.secrets.String(ctx, p.cfg.SecretID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service account key: %w", err)
	}

	client, err := p.newClient(ctx, p.cfg.ProjectID, []byte(key))
	if err != nil {
		p.log.Error("pubsub client init failed", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize pubsub client: %w", err)
	}

	p.topic = client.Topic(p.cfg.Topic)
	p.log.Info("pubsub publisher initialized",
		zap.String("project", p.cfg.ProjectID),
		zap.String("topic", p.cfg.Topic))
	return p.topic, nil
}

// attributes builds the routing attributes subscribers filter on.
func attributes(payload map[string]any) map[string]string {
	attrs := map[string]string{
		"source":         "daily-coordinator",
		"event_type":     "unknown",
		"coordinator_id": "",
	}
	if status, ok := payload["status"].(string); ok {
		attrs["event_type"] = status
	}
	if id, ok := payload["coordinator_id"].(string); ok {
		attrs["coordinator_id"] = id
	}
	return attrs
}
