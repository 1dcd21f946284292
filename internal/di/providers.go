package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"SmartCVD/internal/domain/models"
	"SmartCVD/internal/domain/repository"
	"SmartCVD/internal/handler/api"
	internalrepo "SmartCVD/internal/repository"
	"SmartCVD/internal/service/cache"
	"SmartCVD/internal/service/ratelimit"
	"SmartCVD/internal/services/catalog"
	"SmartCVD/internal/services/risk"
	"SmartCVD/internal/services/therapy"
	"SmartCVD/internal/usecase"
	"SmartCVD/pkg/config"
	xhttp "SmartCVD/pkg/http"
	pkgkafka "SmartCVD/pkg/kafka"
	applogger "SmartCVD/pkg/logger"
	"SmartCVD/pkg/metrics"
	"SmartCVD/pkg/server"

	echomw "github.com/labstack/echo/v4/middleware"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.Producer.AutoCreate),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	cleanup := func() {
		if err := producer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "kafka producer close: %v\n", err)
		}
	}
	return producer, cleanup, nil
}

// ProvideEventPublisher ships assessment events to Kafka, or to the log without a broker.
// Aggregated warn and error logs go to the same producer when the collector is on.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, l *applogger.Logger) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NewLogEventPublisher(l)
	}
	if cfg.Logging.Collector.Enabled {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Logging.Collector.Topic,
			Source:         "smartcvd/" + cfg.Environment,
			IgnoreFields:   []string{"duration_ms", "bytes", "remote_ip"},
			Publisher:      producer,
		})
	}
	return internalrepo.NewKafkaEventPublisher(producer)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideReportCache selects the response cache backend.
func ProvideReportCache(cfg *config.Config, l *applogger.Logger) (repository.ReportCache, func(), error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewTTLCache(), func() {}, nil
	case "redis":
		rc := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, func() {
			if err := rc.Close(); err != nil {
				l.Warn("redis close error", applogger.Error(err))
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}

// ProvideCatalog loads the catalog file, or the built-in data when none is configured.
func ProvideCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Calculator.CatalogPath == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(cfg.Calculator.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c, nil
}

// ProvideEstimator creates the SMART risk estimator.
func ProvideEstimator() *risk.Estimator {
	return risk.NewEstimator(risk.SMARTModel())
}

// ProvideAdjustor creates the therapy adjustor in the configured projection mode.
func ProvideAdjustor(cfg *config.Config, c *catalog.Catalog) (*therapy.Adjustor, error) {
	return therapy.NewAdjustor(c,
		therapy.WithProjectionMode(models.ProjectionMode(cfg.Calculator.ProjectionMode)),
		therapy.WithFlatReduction(cfg.Calculator.FlatReduction),
	)
}

// ProvideAssessmentService creates the assessment use case.
func ProvideAssessmentService(
	cfg *config.Config,
	est *risk.Estimator,
	adj *therapy.Adjustor,
	c *catalog.Catalog,
	m repository.Metrics,
	events repository.EventPublisher,
	l *applogger.Logger,
) *usecase.AssessmentService {
	return usecase.NewAssessmentService(est, adj, c,
		usecase.WithMetrics(m),
		usecase.WithEvents(events, cfg.Kafka.EventTopic),
		usecase.WithLogger(l),
	)
}

// ProvideLimiter creates the per-client rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideAssessmentHandler creates the HTTP handler.
func ProvideAssessmentHandler(
	cfg *config.Config,
	l *applogger.Logger,
	svc *usecase.AssessmentService,
	rc repository.ReportCache,
	limiter *ratelimit.Limiter,
	m repository.Metrics,
) *api.AssessmentEchoHandler {
	return api.NewAssessmentEchoHandler(l, svc, rc, limiter, m, api.HandlerConfig{
		CacheTTL:       cfg.Cache.TTL,
		RateLimit:      cfg.RateLimit.Enabled,
		RateCapacity:   cfg.RateLimit.Capacity,
		RateRefill:     cfg.RateLimit.Refill,
		LiveMaxRPS:     cfg.Live.MaxRPS,
		LiveReadLimit:  cfg.Live.ReadLimit,
		LivePingPeriod: cfg.Live.PingPeriod,
		AllowedOrigins: cfg.Server.CORSOrigins,
	})
}

// ProvideHTTPServer creates the Echo server with the handler's routes.
func ProvideHTTPServer(cfg *config.Config, h *api.AssessmentEchoHandler, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true, cfg.Server.CORSOrigins...),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path),
		xhttp.WithLogger(l),
		xhttp.WithMiddleware(echomw.BodyLimit(cfg.Server.BodyLimit)),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, limiter *ratelimit.Limiter) *server.App {
	return server.New(cfg, l, srv, limiter)
}
