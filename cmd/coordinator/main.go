// Package main is the entry point for the daily coordinator Lambda function.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/coordinator"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/crossbus"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/logging"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/router"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/secrets"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/warmup"
)

func main() {
	logger, err := logging.New()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadCoordinator()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal("failed to load AWS configuration", zap.Error(err))
	}

	secretCache := secrets.NewCache(secretsmanager.NewFromConfig(awsCfg), logger)
	runner := coordinator.New(
		cfg,
		coordinator.NewStateStore(dynamodb.NewFromConfig(awsCfg), cfg.StateTable, logger),
		coordinator.NewCacheStore(s3.NewFromConfig(awsCfg), cfg.CacheBucket, logger),
		coordinator.NewAlertPublisher(sns.NewFromConfig(awsCfg), cfg.AlertTopicARN, logger),
		secretCache,
		logger,
	)
	handler := coordinator.NewHandler(runner, logger)

	entry := domain.Handler(handler.Handle)
	if busCfg, err := config.LoadCrossBus(); err != nil {
		logger.Warn("cross-bus republishing disabled", zap.Error(err))
	} else {
		entry = crossbus.WithRepublish(entry, crossbus.NewPublisher(busCfg, secretCache, logger), logger)
	}

	warmer := warmup.NewWarmer(
		lambdasdk.NewFromConfig(awsCfg),
		os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		logger,
	)

	lambda.Start(router.Entry(warmer, entry))
}
