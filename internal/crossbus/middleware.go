package crossbus

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

// EventPublisher publishes a decoded result payload.
type EventPublisher interface {
	Publish(ctx context.Context, payload map[string]any) (string, error)
}

// WithRepublish wraps next so successful responses are also published to the
// second bus. Republish failures never fail the invocation.
func WithRepublish(next domain.Handler, publisher EventPublisher, log *zap.Logger) domain.Handler {
	return func(ctx context.Context, raw json.RawMessage) (domain.Response, error) {
		response, err := next(ctx, raw)
		if err != nil || response.StatusCode != http.StatusOK {
			return response, err
		}

		body := response.Body
		if body == "" {
			body = "{}"
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(body), &payload); err != nil || payload == nil {
			log.Warn("republish skipped, response body is not a JSON object",
				zap.Error(err))
			return response, nil
		}

		if _, err := publisher.Publish(ctx, payload); err != nil {
			log.Warn("republish failed", zap.Error(err))
		}
		return response, nil
	}
}
