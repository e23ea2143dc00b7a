package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rate-shopper/controllers"
	applogger "rate-shopper/logger"
	"rate-shopper/middleware"
	"rate-shopper/providers"
	"rate-shopper/routes"
	"rate-shopper/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	aws_pkg "rate-shopper/pkg/aws"
)

const serviceName = "rate-shopper"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// AWS is optional: without it metrics, log shipping, events and secrets are off.
	needAWS := cfg.CloudWatchEnabled || cfg.UseSecrets || cfg.QuoteSNSTopicARN != ""
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(context.Background())
	awsReady := needAWS && awsErr == nil

	var cwWriter io.Writer
	if awsReady && cfg.CloudWatchEnabled {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(context.Background(), awsCfg, cfg.CloudWatchLogGroup, serviceName, true)
		if err != nil {
			log.Printf("CloudWatch Logs unavailable: %v", err)
		} else {
			cwWriter = cwLogs
		}
	}

	logger, err := applogger.New(cfg.AppEnv, cwWriter)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if needAWS && awsErr != nil {
		logger.Warn("AWS config unavailable, AWS integrations disabled", zap.Error(awsErr))
	}

	if cfg.UseSecrets && awsReady {
		if err := cfg.applySecrets(context.Background(), aws_pkg.NewSecretsClient(awsCfg)); err != nil {
			logger.Warn("Failed to load Sendcloud credentials from Secrets Manager", zap.Error(err))
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	var snsClient aws_pkg.SNSPublisher
	var metricsClient *aws_pkg.MetricsClient
	if awsReady {
		if cfg.QuoteSNSTopicARN != "" {
			snsClient = aws_pkg.NewSNSClient(awsCfg)
		}
		metricsClient = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)
	}

	provider := buildProvider(cfg)
	scheduler := services.NewBatchScheduler(provider, logger,
		services.WithBatchSize(cfg.QuoteBatchSize),
		services.WithInterBatchDelay(cfg.QuoteBatchDelay),
	)
	aggregator := services.NewAggregator(provider, scheduler, logger)

	var metrics services.MetricsRecorder
	if metricsClient.IsEnabled() {
		metrics = metricsClient
	}
	quoteService := services.NewQuoteService(aggregator, snsClient, cfg.QuoteSNSTopicARN, metrics, logger)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(cfg, quoteService, metricsClient, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Rate shopper started",
		zap.String("port", cfg.Port),
		zap.String("provider", provider.Name()),
		zap.Int("batch_size", scheduler.BatchSize()),
		zap.Duration("batch_delay", cfg.QuoteBatchDelay),
	)
	<-quit
	logger.Info("Shutting down rate shopper...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}

// buildProvider picks the rate provider named by RATE_PROVIDER.
func buildProvider(cfg *Config) providers.RateProvider {
	if cfg.RateProvider == ProviderFixture {
		return providers.NewFixtureProvider(cfg.FixtureLatency)
	}
	transport := providers.NewBasicAuthTransport(cfg.SendcloudPublicKey, cfg.SendcloudSecretKey, cfg.ProviderTimeout)
	return providers.NewSendcloudProvider(cfg.SendcloudBaseURL, transport)
}

// newRouter wires the middleware chain and the quote routes.
func newRouter(cfg *Config, svc services.QuoteService, metricsClient *aws_pkg.MetricsClient, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Metrics(metricsClient, serviceName),
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 5*time.Minute)
	routes.RegisterQuoteRoutes(r, controllers.NewQuoteController(svc),
		limiter.Handler(),
		middleware.Timeout(cfg.RequestTimeout),
	)
	return r
}
