// Package config loads per-handler configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Coordinator configures the primary coordination handler.
type Coordinator struct {
	CoordinatorID string
	StateTable    string
	CacheBucket   string
	AlertTopicARN string
	SecretARN     string
}

// LoadCoordinator reads the coordinator configuration. The downstream
// resources are all required; the coordinator identity has a fixed default.
func LoadCoordinator() (Coordinator, error) {
	cfg := Coordinator{
		CoordinatorID: envDefault("COORDINATOR_ID", "daily-coordinator-001"),
		StateTable:    os.Getenv("DYNAMODB_TABLE"),
		CacheBucket:   os.Getenv("S3_BUCKET"),
		AlertTopicARN: os.Getenv("SNS_TOPIC_ARN"),
		SecretARN:     os.Getenv("SECRETS_MANAGER_ARN"),
	}
	if cfg.StateTable == "" {
		return Coordinator{}, fmt.Errorf("DYNAMODB_TABLE is required")
	}
	if cfg.CacheBucket == "" {
		return Coordinator{}, fmt.Errorf("S3_BUCKET is required")
	}
	if cfg.AlertTopicARN == "" {
		return Coordinator{}, fmt.Errorf("SNS_TOPIC_ARN is required")
	}
	if cfg.SecretARN == "" {
		return Coordinator{}, fmt.Errorf("SECRETS_MANAGER_ARN is required")
	}
	return cfg, nil
}

// CrossBus configures the second-bus publisher.
type CrossBus struct {
	SecretID  string
	ProjectID string
	Topic     string
}

// LoadCrossBus reads the cross-bus publisher configuration. Both the service
// account secret and the project are required; callers treat an error as
// "republishing disabled" rather than a fatal condition.
func LoadCrossBus() (CrossBus, error) {
	cfg := CrossBus{
		SecretID:  os.Getenv("GCP_PUBSUB_SECRET_NAME"),
		ProjectID: os.Getenv("GCP_PROJECT_ID"),
		Topic:     envDefault("GCP_PUBSUB_TOPIC", "daily-coordinator-events"),
	}
	if cfg.SecretID == "" {
		return CrossBus{}, fmt.Errorf("GCP_PUBSUB_SECRET_NAME is required")
	}
	if cfg.ProjectID == "" {
		return CrossBus{}, fmt.Errorf("GCP_PROJECT_ID is required")
	}
	return cfg, nil
}

// SlackRelay configures the webhook-relay handler.
type SlackRelay struct {
	SecretID      string
	SecretKey     string
	Channel       string
	Username      string
	IconEmoji     string
	MessagePrefix string
}

// LoadSlackRelay reads the webhook-relay configuration.
func LoadSlackRelay() (SlackRelay, error) {
	cfg := SlackRelay{
		SecretID:      os.Getenv("SLACK_WEBHOOK_SECRET_NAME"),
		SecretKey:     envDefault("SLACK_WEBHOOK_SECRET_KEY", "slack_webhook_url"),
		Channel:       os.Getenv("SLACK_CHANNEL"),
		Username:      envDefault("SLACK_USERNAME", "DailyCoordinatorBot"),
		IconEmoji:     envDefault("SLACK_ICON_EMOJI", ":spiral_calendar_pad:"),
		MessagePrefix: envDefault("SLACK_MESSAGE_PREFIX", ":information_source: Task updated"),
	}
	if cfg.SecretID == "" {
		return SlackRelay{}, fmt.Errorf("SLACK_WEBHOOK_SECRET_NAME is required")
	}
	return cfg, nil
}

// WhatsApp configures the chat-relay handler. SecretID is validated lazily by
// the sender so that a missing recipient list still short-circuits to the
// "not configured" response before any credential lookup.
type WhatsApp struct {
	SecretID   string
	From       string
	Recipients []string
}

// LoadWhatsApp reads the chat-relay configuration.
func LoadWhatsApp() WhatsApp {
	return WhatsApp{
		SecretID:   os.Getenv("TWILIO_SECRET_NAME"),
		From:       envDefault("WHATSAPP_FROM", "whatsapp:+14155238886"),
		Recipients: splitRecipients(os.Getenv("WHATSAPP_TO")),
	}
}

// FireSync configures the document-sync function. An empty ProjectID lets the
// client detect the project from the runtime environment.
type FireSync struct {
	ProjectID              string
	TasksCollection        string
	CoordinatorsCollection string
}

// LoadFireSync reads the document-sync configuration.
func LoadFireSync() FireSync {
	return FireSync{
		ProjectID:              os.Getenv("FIRESTORE_PROJECT_ID"),
		TasksCollection:        envDefault("TASKS_COLLECTION", "tasks"),
		CoordinatorsCollection: envDefault("COORDINATORS_COLLECTION", "coordinators"),
	}
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// splitRecipients parses a comma-separated recipient list, trimming
// whitespace and dropping empty entries.
func splitRecipients(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
