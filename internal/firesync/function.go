package firesync

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/logging"
)

func init() {
	functions.CloudEvent("PubSubToFirestore", handle)
}

var (
	setupOnce sync.Once
	setupErr  error
	syncer    *Syncer
)

// handle decodes the CloudEvent wrapper and hands the message to the syncer.
func handle(ctx context.Context, e event.Event) error {
	var data MessagePublishedData
	if err := e.DataAs(&data); err != nil {
		return fmt.Errorf("failed to decode event data: %w", err)
	}

	s, err := defaultSyncer(ctx)
	if err != nil {
		return err
	}
	return s.Sync(ctx, data.Message)
}

// defaultSyncer builds the Firestore-backed syncer once per instance.
func defaultSyncer(ctx context.Context) (*Syncer, error) {
	setupOnce.Do(func() {
		log, err := logging.New()
		if err != nil {
			setupErr = fmt.Errorf("failed to build logger: %w", err)
			return
		}

		cfg := config.LoadFireSync()
		projectID := cfg.ProjectID
		if projectID == "" {
			projectID = firestore.DetectProjectID
		}

		client, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			setupErr = fmt.Errorf("failed to create firestore client: %w", err)
			return
		}

		syncer = NewSyncer(cfg, &firestoreWriter{client: client}, log)
	})
	return syncer, setupErr
}
