package coordinator

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// SNSAPI is the subset of the SNS client used to raise alerts.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// AlertPublisher sends subject/message alerts to the notification topic.
type AlertPublisher struct {
	client   SNSAPI
	topicARN string
	log      *zap.Logger
}

// NewAlertPublisher creates a publisher for the given topic.
func NewAlertPublisher(client SNSAPI, topicARN string, log *zap.Logger) *AlertPublisher {
	return &AlertPublisher{client: client, topicARN: topicARN, log: log}
}

// Publish sends one alert to the topic.
func (p *AlertPublisher) Publish(ctx context.Context, subject, message string) error {
	if _, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}); err != nil {
		p.log.Error("alert publish failed",
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	p.log.Info("alert published", zap.String("subject", subject))
	return nil
}
