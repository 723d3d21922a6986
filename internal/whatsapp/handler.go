package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/envelope"
)

// AlertSender delivers one update to one recipient.
type AlertSender interface {
	Send(ctx context.Context, event domain.CoordinatorEvent, recipient string) (string, error)
}

// DeliveryResult reports the outcome of one recipient delivery.
type DeliveryResult struct {
	Recipient string `json:"recipient"`
	SID       string `json:"sid,omitempty"`
	Error     string `json:"error,omitempty"`
	Status    string `json:"status"`
}

// Handler fans a coordinator update out to the configured recipients.
type Handler struct {
	cfg    config.WhatsApp
	sender AlertSender
	log    *zap.Logger
}

// NewHandler creates the fan-out handler.
func NewHandler(cfg config.WhatsApp, sender AlertSender, log *zap.Logger) *Handler {
	return &Handler{cfg: cfg, sender: sender, log: log}
}

// Handle extracts the update and sends it to every configured recipient.
// Per-recipient failures are reported in the body, not as handler errors.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (domain.Response, error) {
	h.log.Info("received event", zap.ByteString("event", raw))

	event, ok := envelope.Event(raw)
	if !ok {
		return domain.JSONResponse(http.StatusBadRequest, map[string]string{"error": "No event data"})
	}

	if len(h.cfg.Recipients) == 0 {
		h.log.Warn("no recipients configured, skipping alerts")
		return domain.JSONResponse(http.StatusOK, map[string]string{"message": "WhatsApp not configured"})
	}

	results := make([]DeliveryResult, 0, len(h.cfg.Recipients))
	for _, recipient := range h.cfg.Recipients {
		recipient = NormalizeRecipient(recipient)

		sid, err := h.sender.Send(ctx, event, recipient)
		if err != nil {
			results = append(results, DeliveryResult{
				Recipient: recipient,
				Error:     err.Error(),
				Status:    "failed",
			})
			continue
		}
		results = append(results, DeliveryResult{
			Recipient: recipient,
			SID:       sid,
			Status:    "sent",
		})
	}

	return domain.JSONResponse(http.StatusOK, struct {
		Message string           `json:"message"`
		Results []DeliveryResult `json:"results"`
	}{
		Message: "WhatsApp alerts processed",
		Results: results,
	})
}
