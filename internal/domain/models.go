// Package domain contains the core domain types shared by the Daily
// Coordinator handlers.
package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Coordination statuses recorded in results and state snapshots.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPartial = "partial"
)

// CoordinatorEvent is a status payload describing the outcome of a scheduled
// coordination run. It is the unit exchanged between the handlers: the
// coordinator emits it, the notifiers and the document sync consume it.
type CoordinatorEvent struct {
	CoordinatorID  string   `json:"coordinator_id"`
	Status         string   `json:"status"`
	TasksProcessed int      `json:"tasks_processed"`
	Errors         []string `json:"errors"`
	Timestamp      string   `json:"timestamp"`
}

// Result is the outcome of a coordination run. It carries the same fields as
// CoordinatorEvent; Errors collects human-readable failure descriptions.
type Result struct {
	CoordinatorID  string   `json:"coordinator_id"`
	Timestamp      string   `json:"timestamp"`
	Status         string   `json:"status"`
	TasksProcessed int      `json:"tasks_processed"`
	Errors         []string `json:"errors"`
}

// State is a coordinator state snapshot persisted between runs.
type State struct {
	Status     string `json:"status"`
	LastRun    string `json:"last_run"`
	TasksCount int    `json:"tasks_count"`
}

// Summary is a concise description of a task update, extracted from either a
// direct invocation payload or a notification envelope.
type Summary struct {
	Task    string `json:"task"`
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// Response is the Lambda-style invocation response. Body is a JSON document.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler processes a raw Lambda event.
type Handler func(ctx context.Context, event json.RawMessage) (Response, error)

// JSONResponse builds a Response with the payload serialized as the body.
func JSONResponse(statusCode int, payload any) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal response body: %w", err)
	}
	return Response{StatusCode: statusCode, Body: string(body)}, nil
}

// ErrorResponse builds the 500 response returned when a handler fails
// unexpectedly. It never fails: the body is assembled from plain strings.
func ErrorResponse(err error, now time.Time) Response {
	body, _ := json.Marshal(map[string]string{
		"error":     err.Error(),
		"timestamp": Timestamp(now),
	})
	return Response{StatusCode: 500, Body: string(body)}
}

// Timestamp renders t in the repository's wire format (RFC 3339, UTC).
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
