package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"groundwater-quality-api/src/api"
	"groundwater-quality-api/src/catalog"
	"groundwater-quality-api/src/config"
	"groundwater-quality-api/src/dynamo"
	"groundwater-quality-api/src/logging"
	"groundwater-quality-api/src/model"
	"groundwater-quality-api/src/observability"
	"groundwater-quality-api/src/pipeline"
	"groundwater-quality-api/src/sagemaker"
)

const (
	appName = "groundwater-quality-api"
	version = "0.1.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
	if err != nil {
		return fmt.Errorf("create aws session: %w", err)
	}

	artifacts := model.ArtifactReader{S3: s3.New(sess)}

	scaler, err := artifacts.LoadScaler(ctx, cfg.ScalerPath)
	if err != nil {
		return fmt.Errorf("load scaler: %w", err)
	}

	var classifier model.Classifier
	switch cfg.ModelBackend {
	case config.BackendSageMaker:
		classifier = sagemaker.NewClassifier(sagemakerruntime.New(sess), cfg.SageMakerEndpointName)
	default:
		mlp, err := artifacts.LoadMLP(ctx, cfg.ModelPath)
		if err != nil {
			return fmt.Errorf("load classifier: %w", err)
		}
		classifier = mlp
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	clock := clockwork.NewRealClock()
	db := dynamo.NewClient(sess, cfg.DynamoDBEndpoint)

	p := pipeline.New(
		dynamo.NewReadingGateway(db, cfg.DynamoDBTable, cfg.DynamoDBIndex, logger),
		scaler,
		classifier,
		loc,
		logger,
		metrics,
		clock,
	)
	c := catalog.New(dynamo.NewPostalCodeScanner(db, cfg.DynamoDBTable, logger))
	a := api.New(p, c, logger, metrics, clock)

	logger.Info("service ready",
		"table", cfg.DynamoDBTable,
		"index", cfg.DynamoDBIndex,
		"model_backend", cfg.ModelBackend,
		"timezone", loc.String(),
	)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(a.HandleEvent)
		return nil
	}

	return serve(cfg, a, logger)
}

func serve(cfg config.Config, a *api.API, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(cfg.HTTPAddr, a, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
