package coordinator

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

// Handler adapts the coordinator to the Lambda invocation contract.
type Handler struct {
	coordinator *Coordinator
	log         *zap.Logger
}

// NewHandler creates the Lambda-facing handler.
func NewHandler(c *Coordinator, log *zap.Logger) *Handler {
	return &Handler{coordinator: c, log: log}
}

// Handle runs one coordination pass. The trigger payload carries no inputs
// and is logged for traceability only.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (domain.Response, error) {
	h.log.Info("received event", zap.ByteString("event", raw))

	result := h.coordinator.Run(ctx)

	response, err := domain.JSONResponse(http.StatusOK, result)
	if err != nil {
		h.log.Error("failed to encode result", zap.Error(err))
		return domain.ErrorResponse(err, time.Now()), nil
	}
	return response, nil
}
