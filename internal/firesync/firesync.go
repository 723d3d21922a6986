// Package firesync mirrors coordinator updates from Pub/Sub into Firestore
// so the mobile app can sync them for offline access.
package firesync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

// MessagePublishedData is the CloudEvent payload for a published message.
type MessagePublishedData struct {
	Message PubSubMessage `json:"message"`
}

// PubSubMessage carries the message body and its routing attributes. Data is
// base64 on the wire and decoded by encoding/json.
type PubSubMessage struct {
	Data       []byte            `json:"data"`
	Attributes map[string]string `json:"attributes"`
}

// Writer persists documents for the sync pipeline.
type Writer interface {
	Set(ctx context.Context, collection, docID string, data map[string]any) error
	Merge(ctx context.Context, collection, docID string, data map[string]any) error
}

// firestoreWriter is the Firestore-backed Writer.
type firestoreWriter struct {
	client *firestore.Client
}

func (w *firestoreWriter) Set(ctx context.Context, collection, docID string, data map[string]any) error {
	_, err := w.client.Collection(collection).Doc(docID).Set(ctx, data)
	return err
}

func (w *firestoreWriter) Merge(ctx context.Context, collection, docID string, data map[string]any) error {
	_, err := w.client.Collection(collection).Doc(docID).Set(ctx, data, firestore.MergeAll)
	return err
}

// Syncer writes coordinator updates into the task and coordinator
// collections.
type Syncer struct {
	cfg    config.FireSync
	writer Writer
	log    *zap.Logger
	now    func() time.Time
}

// NewSyncer creates a syncer writing through the given writer.
func NewSyncer(cfg config.FireSync, writer Writer, log *zap.Logger) *Syncer {
	return &Syncer{cfg: cfg, writer: writer, log: log, now: time.Now}
}

// Sync records one published message. Messages without data are acknowledged
// and skipped; decode and write failures are returned so the platform
// redelivers.
func (s *Syncer) Sync(ctx context.Context, msg PubSubMessage) error {
	if len(msg.Data) == 0 {
		s.log.Warn("message has no data, skipping")
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return fmt.Errorf("failed to decode message data: %w", err)
	}

	now := s.now()
	coordinatorID := stringField(payload, "coordinator_id", "unknown")
	docID := fmt.Sprintf("%s_%d", coordinatorID, now.Unix())

	if err := s.writer.Set(ctx, s.cfg.TasksCollection, docID, taskDocument(payload, msg.Attributes, now)); err != nil {
		s.log.Error("task write failed", zap.String("doc_id", docID), zap.Error(err))
		return fmt.Errorf("failed to write task document: %w", err)
	}
	s.log.Info("task written", zap.String("doc_id", docID))

	if err := s.writer.Merge(ctx, s.cfg.CoordinatorsCollection, coordinatorID, coordinatorUpdate(payload)); err != nil {
		s.log.Error("coordinator update failed",
			zap.String("coordinator_id", coordinatorID),
			zap.Error(err))
		return fmt.Errorf("failed to update coordinator document: %w", err)
	}

	return nil
}

// taskDocument builds the per-event document. The synced flag starts false
// and is flipped by the mobile app once it holds the update offline.
func taskDocument(payload map[string]any, attrs map[string]string, now time.Time) map[string]any {
	return map[string]any{
		"coordinator_id":  stringField(payload, "coordinator_id", "unknown"),
		"status":          stringField(payload, "status", "unknown"),
		"tasks_processed": numberField(payload, "tasks_processed"),
		"errors":          errorList(payload),
		"timestamp":       stringField(payload, "timestamp", domain.Timestamp(now)),
		"event_type":      attrValue(attrs, "event_type", "update"),
		"source":          attrValue(attrs, "source", "pubsub"),
		"created_at":      firestore.ServerTimestamp,
		"synced":          false,
	}
}

// coordinatorUpdate merges the latest status into the per-coordinator
// document. total_tasks accumulates across events.
func coordinatorUpdate(payload map[string]any) map[string]any {
	return map[string]any{
		"last_status": payload["status"],
		"last_update": firestore.ServerTimestamp,
		"total_tasks": firestore.Increment(numberField(payload, "tasks_processed")),
	}
}

func stringField(payload map[string]any, key, fallback string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return fallback
}

func numberField(payload map[string]any, key string) int64 {
	if v, ok := payload[key].(float64); ok {
		return int64(v)
	}
	return 0
}

func errorList(payload map[string]any) []any {
	if v, ok := payload["errors"].([]any); ok {
		return v
	}
	return []any{}
}

func attrValue(attrs map[string]string, key, fallback string) string {
	if v, ok := attrs[key]; ok {
		return v
	}
	return fallback
}
