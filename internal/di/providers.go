package di

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/repository"
	"StockCast/internal/domain/service"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	icache "StockCast/internal/service/cache"
	"StockCast/internal/service/model"
	"StockCast/internal/usecase"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.NewRecorder()
}

// ProvideFeatureStore creates and loads the CSV feature store. A load
// failure is logged but does not abort startup; the health endpoint
// reports the error state until a successful Reload.
func ProvideFeatureStore(cfg *config.Config, l *applogger.Logger) *internalrepo.CSVFeatureStore {
	store := internalrepo.NewCSVFeatureStore(cfg.Features.Path)
	store.SetLogger(l)
	if err := store.Load(); err != nil {
		l.Error("feature store unavailable at startup", applogger.Error(err))
	}
	return store
}

// ProvideClassifier loads the configured classifier. A nil return means
// the model is unavailable and prediction degrades to 503.
func ProvideClassifier(cfg *config.Config, l *applogger.Logger) service.DirectionClassifier {
	switch cfg.Model.Type {
	case "http":
		clf, err := model.NewRemoteClassifier(cfg.Model.ServiceURL, cfg.Model.Timeout)
		if err != nil {
			l.Error("model service client unavailable", applogger.Error(err))
			return nil
		}
		l.Info("using remote model service", applogger.String("url", cfg.Model.ServiceURL))
		return clf
	default:
		clf, err := model.LoadLogisticClassifier(cfg.Model.Path)
		if err != nil {
			l.Error("model load failed, serving degraded", applogger.Error(err))
			return nil
		}
		l.Info("model loaded", applogger.String("path", cfg.Model.Path))
		return clf
	}
}

// ProvideResponseCache creates the prediction response cache, or nil when
// caching is disabled.
func ProvideResponseCache(cfg *config.Config) icache.BytesCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvidePredictor creates the serving use case.
func ProvidePredictor(
	store *internalrepo.CSVFeatureStore,
	clf service.DirectionClassifier,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Predictor {
	return usecase.NewPredictor(store, clf, m, l)
}

// ProvidePredictHandler creates the HTTP handler.
func ProvidePredictHandler(
	p *usecase.Predictor,
	respCache icache.BytesCache,
	cfg *config.Config,
	l *applogger.Logger,
) *api.PredictHandler {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return api.NewPredictHandler(p, respCache, ttl, l)
}

// ConsumerSet bundles the optional Kafka drain path: consumer, bar
// handler and the ClickHouse-backed bar store it writes to. All fields
// are nil unless the backend is kafka.
type ConsumerSet struct {
	Consumer *pkgkafka.Consumer
	Handler  pkgkafka.MessageHandler
	Store    repository.BarStore
}

// ProvideConsumerSet creates the Kafka drain path in kafka backend mode.
func ProvideConsumerSet(cfg *config.Config, m repository.Metrics, l *applogger.Logger) (*ConsumerSet, error) {
	if cfg.Backend.Type != "kafka" {
		return &ConsumerSet{}, nil
	}

	chClient, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}

	store := internalrepo.NewClickHouseBarStore(chClient)
	store.SetLogger(l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, fmt.Errorf("bar store schema: %w", err)
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		_ = chClient.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	return &ConsumerSet{
		Consumer: consumer,
		Handler:  usecase.NewBarConsumer(cfg.Kafka.Topic, store, m, l),
		Store:    store,
	}, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer for the ingest binary.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.PredictHandler,
	cs *ConsumerSet,
) *server.App {
	return server.New(cfg, l, handler, cs.Consumer, cs.Handler, cs.Store)
}
