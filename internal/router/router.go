// Package router routes raw Lambda events to the warmup handler or to the
// notification handler behind it.
package router

import (
	"context"
	"encoding/json"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/warmup"
)

// Warmer handles warmup events.
type Warmer interface {
	Handle(ctx context.Context, event warmup.Event) (domain.Response, error)
}

// Entry builds the Lambda entry point around next. Warmup detection runs
// before any other processing so warmup pings never reach next.
func Entry(warmer Warmer, next domain.Handler) domain.Handler {
	return func(ctx context.Context, event json.RawMessage) (domain.Response, error) {
		if w, ok := warmup.Detect(event); ok {
			return warmer.Handle(ctx, w)
		}
		return next(ctx, event)
	}
}
