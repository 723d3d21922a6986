package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

type fakeStates struct {
	err    error
	ids    []string
	states []domain.State
}

func (f *fakeStates) Save(ctx context.Context, coordinatorID string, state domain.State, now time.Time) error {
	f.ids = append(f.ids, coordinatorID)
	f.states = append(f.states, state)
	return f.err
}

type fakeCache struct {
	err  error
	keys []string
}

func (f *fakeCache) Upload(ctx context.Context, key string, payload any) error {
	f.keys = append(f.keys, key)
	return f.err
}

type fakeAlerts struct {
	err      error
	subjects []string
	messages []string
}

func (f *fakeAlerts) Publish(ctx context.Context, subject, message string) error {
	f.subjects = append(f.subjects, subject)
	f.messages = append(f.messages, message)
	return f.err
}

type fakeSecretSource struct {
	err   error
	value string
	ids   []string
}

func (f *fakeSecretSource) JSON(ctx context.Context, secretID string, v any) error {
	f.ids = append(f.ids, secretID)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.value), v)
}

func testCoordinator(states *fakeStates, cache *fakeCache, alerts *fakeAlerts, source *fakeSecretSource) *Coordinator {
	cfg := config.Coordinator{
		CoordinatorID: "daily-coordinator-001",
		StateTable:    "coordinator-state",
		CacheBucket:   "coordinator-cache",
		AlertTopicARN: "arn:alerts",
		SecretARN:     "arn:aws:secretsmanager:us-east-1:123456789012:secret:coordinator-config",
	}
	c := New(cfg, states, cache, alerts, source, zap.NewNop())
	c.now = func() time.Time { return time.Date(2026, time.August, 25, 6, 30, 0, 0, time.UTC) }
	return c
}

func TestRunSuccess(t *testing.T) {
	states := &fakeStates{}
	cache := &fakeCache{}
	alerts := &fakeAlerts{}
	source := &fakeSecretSource{value: `{"api_key":"k"}`}

	result := testCoordinator(states, cache, alerts, source).Run(context.Background())

	want := domain.Result{
		CoordinatorID:  "daily-coordinator-001",
		Timestamp:      "2026-08-25T06:30:00Z",
		Status:         domain.StatusSuccess,
		TasksProcessed: 2,
		Errors:         []string{},
	}
	if !reflect.DeepEqual(result, want) {
		t.Fatalf("Run() = %+v, want %+v", result, want)
	}

	if want := []string{"coordinator-config"}; !reflect.DeepEqual(source.ids, want) {
		t.Errorf("secret ids = %v, want %v", source.ids, want)
	}

	if len(states.states) != 2 {
		t.Fatalf("state saves = %d, want 2", len(states.states))
	}
	first, last := states.states[0], states.states[1]
	if first.Status != "running" || first.TasksCount != 5 || first.LastRun != "2026-08-25T06:30:00Z" {
		t.Errorf("first state = %+v", first)
	}
	if last.Status != "completed" {
		t.Errorf("last state status = %q, want %q", last.Status, "completed")
	}

	if want := []string{"cache/daily-coordinator-001/2026-08-25.json"}; !reflect.DeepEqual(cache.keys, want) {
		t.Errorf("cache keys = %v, want %v", cache.keys, want)
	}

	if want := []string{"Daily Coordinator - Success"}; !reflect.DeepEqual(alerts.subjects, want) {
		t.Fatalf("alert subjects = %v, want %v", alerts.subjects, want)
	}
	if want := "Daily coordination completed successfully at 2026-08-25T06:30:00Z"; alerts.messages[0] != want {
		t.Errorf("alert message = %q, want %q", alerts.messages[0], want)
	}
}

func TestRunCollectsTaskFailures(t *testing.T) {
	tests := []struct {
		name          string
		stateErr      error
		cacheErr      error
		wantProcessed int
		wantErrors    []string
	}{
		{
			name:          "state save fails",
			stateErr:      errors.New("throttled"),
			wantProcessed: 1,
			wantErrors:    []string{"Failed to save state to DynamoDB"},
		},
		{
			name:          "cache upload fails",
			cacheErr:      errors.New("denied"),
			wantProcessed: 1,
			wantErrors:    []string{"Failed to upload cache to S3"},
		},
		{
			name:          "both fail",
			stateErr:      errors.New("throttled"),
			cacheErr:      errors.New("denied"),
			wantProcessed: 0,
			wantErrors:    []string{"Failed to save state to DynamoDB", "Failed to upload cache to S3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := &fakeAlerts{}
			c := testCoordinator(&fakeStates{err: tt.stateErr}, &fakeCache{err: tt.cacheErr}, alerts, &fakeSecretSource{value: "{}"})

			result := c.Run(context.Background())

			if result.Status != domain.StatusSuccess {
				t.Errorf("status = %q, want %q", result.Status, domain.StatusSuccess)
			}
			if result.TasksProcessed != tt.wantProcessed {
				t.Errorf("tasks processed = %d, want %d", result.TasksProcessed, tt.wantProcessed)
			}
			if !reflect.DeepEqual(result.Errors, tt.wantErrors) {
				t.Errorf("errors = %v, want %v", result.Errors, tt.wantErrors)
			}

			if want := []string{"Daily Coordinator - Partial Success"}; !reflect.DeepEqual(alerts.subjects, want) {
				t.Fatalf("alert subjects = %v, want %v", alerts.subjects, want)
			}
			wantPrefix := fmt.Sprintf("Daily Coordinator completed with %d errors:\n", len(tt.wantErrors))
			if !strings.HasPrefix(alerts.messages[0], wantPrefix) {
				t.Errorf("alert message = %q, want prefix %q", alerts.messages[0], wantPrefix)
			}
			if !strings.HasSuffix(alerts.messages[0], strings.Join(tt.wantErrors, "\n")) {
				t.Errorf("alert message = %q, want errors listed", alerts.messages[0])
			}
		})
	}
}

func TestRunContinuesWithoutSecrets(t *testing.T) {
	alerts := &fakeAlerts{}
	c := testCoordinator(&fakeStates{}, &fakeCache{}, alerts, &fakeSecretSource{err: errors.New("access denied")})

	result := c.Run(context.Background())

	if result.TasksProcessed != 2 || len(result.Errors) != 0 {
		t.Fatalf("Run() = %+v", result)
	}
	if want := []string{"Daily Coordinator - Success"}; !reflect.DeepEqual(alerts.subjects, want) {
		t.Errorf("alert subjects = %v, want %v", alerts.subjects, want)
	}
}

func TestRunCancelledContext(t *testing.T) {
	states := &fakeStates{}
	alerts := &fakeAlerts{}
	c := testCoordinator(states, &fakeCache{}, alerts, &fakeSecretSource{value: "{}"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.Run(ctx)

	if result.Status != domain.StatusFailed {
		t.Errorf("status = %q, want %q", result.Status, domain.StatusFailed)
	}
	if want := []string{context.Canceled.Error()}; !reflect.DeepEqual(result.Errors, want) {
		t.Errorf("errors = %v, want %v", result.Errors, want)
	}
	if len(states.states) != 0 {
		t.Errorf("state saves = %d, want 0", len(states.states))
	}
	if want := []string{"Daily Coordinator - Failed"}; !reflect.DeepEqual(alerts.subjects, want) {
		t.Fatalf("alert subjects = %v, want %v", alerts.subjects, want)
	}
	if want := "Error: context canceled"; alerts.messages[0] != want {
		t.Errorf("alert message = %q, want %q", alerts.messages[0], want)
	}
}

func TestRunIgnoresAlertFailure(t *testing.T) {
	c := testCoordinator(&fakeStates{}, &fakeCache{}, &fakeAlerts{err: errors.New("no topic")}, &fakeSecretSource{value: "{}"})

	result := c.Run(context.Background())

	if result.Status != domain.StatusSuccess || result.TasksProcessed != 2 {
		t.Errorf("Run() = %+v", result)
	}
}
