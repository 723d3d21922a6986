// Package coordinator implements the daily coordination pass: persist run
// state to DynamoDB, refresh the cache artifact in S3 and raise an outcome
// alert on SNS.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/secrets"
)

const (
	dailyTaskCount  = 5
	cacheEntryCount = 10

	subjectSuccess = "Daily Coordinator - Success"
	subjectPartial = "Daily Coordinator - Partial Success"
	subjectFailed  = "Daily Coordinator - Failed"
)

// StateSaver persists state snapshots.
type StateSaver interface {
	Save(ctx context.Context, coordinatorID string, state domain.State, now time.Time) error
}

// CacheUploader writes JSON artifacts to the cache bucket.
type CacheUploader interface {
	Upload(ctx context.Context, key string, payload any) error
}

// AlertSender publishes subject/message alerts.
type AlertSender interface {
	Publish(ctx context.Context, subject, message string) error
}

// SecretSource resolves JSON secrets by name.
type SecretSource interface {
	JSON(ctx context.Context, secretID string, v any) error
}

// cachePayload is the artifact uploaded on every pass.
type cachePayload struct {
	Timestamp     string `json:"timestamp"`
	CoordinatorID string `json:"coordinator_id"`
	CacheEntries  int    `json:"cache_entries"`
	Status        string `json:"status"`
}

// Coordinator orchestrates one coordination pass across its collaborators.
type Coordinator struct {
	id        string
	secretARN string

	states  StateSaver
	cache   CacheUploader
	alerts  AlertSender
	secrets SecretSource
	log     *zap.Logger
	now     func() time.Time
}

// New wires a coordinator from its collaborators.
func New(cfg config.Coordinator, states StateSaver, cache CacheUploader, alerts AlertSender, source SecretSource, log *zap.Logger) *Coordinator {
	return &Coordinator{
		id:        cfg.CoordinatorID,
		secretARN: cfg.SecretARN,
		states:    states,
		cache:     cache,
		alerts:    alerts,
		secrets:   source,
		log:       log,
		now:       time.Now,
	}
}

// Run executes one coordination pass and reports the outcome. Task failures
// are collected rather than aborting the pass; the alert subject reflects
// whether every task succeeded.
func (c *Coordinator) Run(ctx context.Context) domain.Result {
	now := c.now()
	timestamp := domain.Timestamp(now)

	result := domain.Result{
		CoordinatorID: c.id,
		Timestamp:     timestamp,
		Status:        domain.StatusSuccess,
		Errors:        []string{},
	}

	if err := ctx.Err(); err != nil {
		c.log.Error("coordination aborted", zap.Error(err))
		result.Status = domain.StatusFailed
		result.Errors = append(result.Errors, err.Error())
		c.alert(ctx, subjectFailed, "Error: "+err.Error())
		return result
	}

	bundle := c.loadSecrets(ctx)
	c.log.Info("secrets retrieved", zap.Int("keys", len(bundle)))

	state := domain.State{
		Status:     "running",
		LastRun:    timestamp,
		TasksCount: dailyTaskCount,
	}
	if err := c.states.Save(ctx, c.id, state, now); err != nil {
		result.Errors = append(result.Errors, "Failed to save state to DynamoDB")
	} else {
		result.TasksProcessed++
	}

	artifact := cachePayload{
		Timestamp:     timestamp,
		CoordinatorID: c.id,
		CacheEntries:  cacheEntryCount,
		Status:        "cached",
	}
	if err := c.cache.Upload(ctx, c.cacheKey(now), artifact); err != nil {
		result.Errors = append(result.Errors, "Failed to upload cache to S3")
	} else {
		result.TasksProcessed++
	}

	// The completed snapshot is best effort and not counted as a task.
	state.Status = "completed"
	_ = c.states.Save(ctx, c.id, state, c.now())

	if len(result.Errors) > 0 {
		message := fmt.Sprintf("Daily Coordinator completed with %d errors:\n%s",
			len(result.Errors), strings.Join(result.Errors, "\n"))
		c.alert(ctx, subjectPartial, message)
	} else {
		c.alert(ctx, subjectSuccess,
			fmt.Sprintf("Daily coordination completed successfully at %s", timestamp))
	}

	return result
}

// cacheKey names the daily artifact after the coordinator and the UTC date.
func (c *Coordinator) cacheKey(now time.Time) string {
	return fmt.Sprintf("cache/%s/%s.json", c.id, now.UTC().Format("2006-01-02"))
}

// loadSecrets fetches the runtime secret bundle. A missing or unreadable
// secret downgrades to an empty bundle so the pass can continue.
func (c *Coordinator) loadSecrets(ctx context.Context) map[string]any {
	var bundle map[string]any
	if err := c.secrets.JSON(ctx, secrets.NameFromARN(c.secretARN), &bundle); err != nil {
		c.log.Warn("continuing without secrets", zap.Error(err))
		return map[string]any{}
	}
	return bundle
}

// alert publishes fire and forget; the publisher logs delivery failures.
func (c *Coordinator) alert(ctx context.Context, subject, message string) {
	_ = c.alerts.Publish(ctx, subject, message)
}
