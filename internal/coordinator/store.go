package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

// DynamoDBAPI is the subset of the DynamoDB client used to persist state.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// stateItem is the persisted shape of a state snapshot.
type stateItem struct {
	CoordinatorID string `dynamodbav:"coordinator_id"`
	Timestamp     int64  `dynamodbav:"timestamp"`
	Status        string `dynamodbav:"status"`
	Data          string `dynamodbav:"data"`
	UpdatedAt     string `dynamodbav:"updated_at"`
}

// StateStore persists coordinator state snapshots in DynamoDB.
type StateStore struct {
	client DynamoDBAPI
	table  string
	log    *zap.Logger
}

// NewStateStore creates a store writing to the given table.
func NewStateStore(client DynamoDBAPI, table string, log *zap.Logger) *StateStore {
	return &StateStore{client: client, table: table, log: log}
}

// Save writes a state snapshot. The sort key is the write time in
// milliseconds, so every save appends a new version instead of overwriting.
func (s *StateStore) Save(ctx context.Context, coordinatorID string, state domain.State, now time.Time) error {
	status := state.Status
	if status == "" {
		status = "pending"
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	item, err := attributevalue.MarshalMap(stateItem{
		CoordinatorID: coordinatorID,
		Timestamp:     now.UnixMilli(),
		Status:        status,
		Data:          string(data),
		UpdatedAt:     domain.Timestamp(now),
	})
	if err != nil {
		return fmt.Errorf("failed to encode state item: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		s.log.Error("state write failed",
			zap.String("coordinator_id", coordinatorID),
			zap.String("table", s.table),
			zap.Error(err))
		return fmt.Errorf("failed to save state: %w", err)
	}

	s.log.Info("state saved",
		zap.String("coordinator_id", coordinatorID),
		zap.String("status", status))
	return nil
}
