// Package slackrelay forwards coordinator updates to a Slack incoming
// webhook.
package slackrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/envelope"
)

// webhookTimeout bounds a single webhook POST.
const webhookTimeout = 5 * time.Second

// SecretSource resolves raw secret strings by name.
type SecretSource interface {
	String(ctx context.Context, secretID string) (string, error)
}

// Handler relays coordinator updates to Slack.
type Handler struct {
	cfg     config.SlackRelay
	secrets SecretSource
	http    *http.Client
	log     *zap.Logger
}

// NewHandler creates the relay handler.
func NewHandler(cfg config.SlackRelay, source SecretSource, log *zap.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		secrets: source,
		http:    &http.Client{Timeout: webhookTimeout},
		log:     log,
	}
}

// Handle posts one update to the webhook. Webhook resolution and delivery
// failures are returned so the platform retries the invocation.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (domain.Response, error) {
	h.log.Info("received event", zap.ByteString("event", raw))

	url, err := h.webhookURL(ctx)
	if err != nil {
		h.log.Error("webhook resolution failed", zap.Error(err))
		return domain.Response{}, err
	}

	summary := envelope.Summarize(raw)
	message := slack.WebhookMessage{
		Text:      renderMessage(h.cfg.MessagePrefix, summary),
		Username:  h.cfg.Username,
		IconEmoji: h.cfg.IconEmoji,
		Channel:   h.cfg.Channel,
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, url, h.http, &message); err != nil {
		h.log.Error("webhook delivery failed", zap.Error(err))
		return domain.Response{}, fmt.Errorf("failed to post to Slack: %w", err)
	}

	h.log.Info("notification sent",
		zap.String("task", summary.Task),
		zap.String("status", summary.Status))

	return domain.JSONResponse(http.StatusOK, struct {
		Message string         `json:"message"`
		Summary domain.Summary `json:"summary"`
	}{
		Message: "Slack notification sent",
		Summary: summary,
	})
}

// webhookURL resolves the webhook from the secret store.
func (h *Handler) webhookURL(ctx context.Context) (string, error) {
	value, err := h.secrets.String(ctx, h.cfg.SecretID)
	if err != nil {
		return "", err
	}
	url := webhookFromSecret(value, h.cfg.SecretKey)
	if url == "" {
		return "", fmt.Errorf("webhook URL not found in secret %s", h.cfg.SecretID)
	}
	return url, nil
}

// webhookFromSecret extracts the webhook URL. The secret is either the URL
// itself or a JSON object carrying it under key or "webhook_url"; any other
// JSON value resolves to nothing.
func webhookFromSecret(value, key string) string {
	if !json.Valid([]byte(value)) {
		return value
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(value), &payload); err != nil {
		return ""
	}
	if url, ok := payload[key].(string); ok && url != "" {
		return url
	}
	url, _ := payload["webhook_url"].(string)
	return url
}

// renderMessage formats the summary as Slack mrkdwn lines.
func renderMessage(prefix string, summary domain.Summary) string {
	lines := []string{
		prefix,
		"*Task:* " + summary.Task,
		"*Status:* " + summary.Status,
	}
	if summary.Subject != "" {
		lines = append(lines, "*Subject:* "+summary.Subject)
	}
	if summary.Details != "" {
		lines = append(lines, "*Details:* "+summary.Details)
	}
	return strings.Join(lines, "\n")
}
