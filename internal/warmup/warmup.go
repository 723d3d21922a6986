// Package warmup answers the scheduled keep-warm pings so Lambda instances
// stay resident between coordinator runs.
package warmup

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

const (
	// Source identifies warmup events among scheduler payloads.
	Source = "warmup"

	// overlapDelay holds the instance long enough for siblings to overlap,
	// forcing the platform to spread invocations across instances.
	overlapDelay = 75 * time.Millisecond
)

// Event is the scheduler payload that triggers a warmup pass.
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Response reports how many instances a warmup pass touched.
type Response struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Detect reports whether raw is a warmup event. It must run before any other
// payload parsing in an entry point.
func Detect(raw json.RawMessage) (Event, bool) {
	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Event{}, false
	}

	source, ok := probe["source"].(string)
	if !ok || source != Source {
		return Event{}, false
	}

	event := Event{Source: source}
	if concurrency, ok := probe["concurrency"].(float64); ok {
		event.Concurrency = int(concurrency)
	}
	return event, true
}

// Invoker is the subset of the Lambda client used to start sibling
// instances.
type Invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Warmer answers warmup events, self-invoking to hold extra instances warm.
type Warmer struct {
	invoker      Invoker
	functionName string
	log          *zap.Logger
	delay        time.Duration
}

// NewWarmer creates a warmer that self-invokes functionName.
func NewWarmer(invoker Invoker, functionName string, log *zap.Logger) *Warmer {
	return &Warmer{
		invoker:      invoker,
		functionName: functionName,
		log:          log,
		delay:        overlapDelay,
	}
}

// Handle processes one warmup event. Self-invocation failures leave this
// instance warm and are not surfaced to the scheduler.
func (w *Warmer) Handle(ctx context.Context, event Event) (domain.Response, error) {
	warmed := 1

	if event.Concurrency > 0 {
		if err := w.selfInvoke(ctx, event.Concurrency); err != nil {
			w.log.Warn("self invoke failed", zap.Error(err))
		} else {
			warmed += event.Concurrency
		}
	}

	time.Sleep(w.delay)

	w.log.Debug("warmup handled", zap.Int("instances", warmed))
	return domain.JSONResponse(http.StatusOK, Response{
		Status:          "warm",
		InstancesWarmed: warmed,
	})
}

// selfInvoke starts count async invocations of this function. Children carry
// concurrency 0 so they cannot fan out again.
func (w *Warmer) selfInvoke(ctx context.Context, count int) error {
	payload, err := json.Marshal(Event{Source: Source})
	if err != nil {
		return err
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		invokeErr error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := w.invoker.Invoke(ctx, &lambda.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				mu.Lock()
				if invokeErr == nil {
					invokeErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return invokeErr
}
