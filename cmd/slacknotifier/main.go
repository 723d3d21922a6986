// Package main is the entry point for the Slack notifier Lambda function.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/logging"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/router"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/secrets"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/slackrelay"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/warmup"
)

func main() {
	logger, err := logging.New()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadSlackRelay()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal("failed to load AWS configuration", zap.Error(err))
	}

	secretCache := secrets.NewCache(secretsmanager.NewFromConfig(awsCfg), logger)
	handler := slackrelay.NewHandler(cfg, secretCache, logger)

	warmer := warmup.NewWarmer(
		lambdasdk.NewFromConfig(awsCfg),
		os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		logger,
	)

	lambda.Start(router.Entry(warmer, handler.Handle))
}
