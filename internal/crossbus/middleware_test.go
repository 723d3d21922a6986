package crossbus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

type stubPublisher struct {
	err      error
	payloads []map[string]any
}

func (s *stubPublisher) Publish(ctx context.Context, payload map[string]any) (string, error) {
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return "", s.err
	}
	return "msg-1", nil
}

func constHandler(response domain.Response, err error) domain.Handler {
	return func(ctx context.Context, raw json.RawMessage) (domain.Response, error) {
		return response, err
	}
}

func TestWithRepublish(t *testing.T) {
	tests := []struct {
		name         string
		response     domain.Response
		handlerErr   error
		publishErr   error
		wantPayloads []map[string]any
	}{
		{
			name:         "successful response is republished",
			response:     domain.Response{StatusCode: http.StatusOK, Body: `{"coordinator_id":"c-1","status":"success"}`},
			wantPayloads: []map[string]any{{"coordinator_id": "c-1", "status": "success"}},
		},
		{
			name:         "empty body publishes empty payload",
			response:     domain.Response{StatusCode: http.StatusOK},
			wantPayloads: []map[string]any{{}},
		},
		{
			name:     "error status is not republished",
			response: domain.Response{StatusCode: http.StatusInternalServerError, Body: `{"error":"boom"}`},
		},
		{
			name:       "handler error is not republished",
			response:   domain.Response{StatusCode: http.StatusOK, Body: "{}"},
			handlerErr: errors.New("boom"),
		},
		{
			name:     "non object body is skipped",
			response: domain.Response{StatusCode: http.StatusOK, Body: "plain text"},
		},
		{
			name:         "publish failure is swallowed",
			response:     domain.Response{StatusCode: http.StatusOK, Body: `{"status":"success"}`},
			publishErr:   errors.New("pubsub down"),
			wantPayloads: []map[string]any{{"status": "success"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &stubPublisher{err: tt.publishErr}
			wrapped := WithRepublish(constHandler(tt.response, tt.handlerErr), publisher, zap.NewNop())

			response, err := wrapped(context.Background(), json.RawMessage(`{}`))
			if !errors.Is(err, tt.handlerErr) {
				t.Fatalf("wrapped() error = %v, want %v", err, tt.handlerErr)
			}
			if response != tt.response {
				t.Errorf("wrapped() response = %+v, want %+v", response, tt.response)
			}
			if !reflect.DeepEqual(publisher.payloads, tt.wantPayloads) {
				t.Errorf("published payloads = %v, want %v", publisher.payloads, tt.wantPayloads)
			}
		})
	}
}
