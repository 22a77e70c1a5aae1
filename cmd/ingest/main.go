package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"StockCast/internal/di"
	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/provider"
	"StockCast/internal/usecase"
	"StockCast/pkg/config"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/util"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	fromFlag := flag.String("from", "", "start date YYYY-MM-DD (default: provider.start_date)")
	toFlag := flag.String("to", "", "end date YYYY-MM-DD (default: today)")
	skipFetch := flag.Bool("skip-fetch", false, "skip provider fetch, only rebuild features")
	skipFeatures := flag.Bool("skip-features", false, "skip feature build after fetch")
	withLabels := flag.Bool("labels", false, "emit training labels (costs the last bar per symbol)")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*configPath = v
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	l, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	rec := metrics.NewRecorder()

	ctx := context.Background()

	if !*skipFetch {
		if err := runFetch(ctx, cfg, l, rec, *fromFlag, *toFlag); err != nil {
			l.Error("ingestion failed", applogger.Error(err))
			os.Exit(1)
		}
	}

	if !*skipFeatures {
		if err := runFeatureBuild(ctx, cfg, l, rec, *withLabels); err != nil {
			l.Error("feature build failed", applogger.Error(err))
			os.Exit(1)
		}
	}
}

func runFetch(ctx context.Context, cfg *config.Config, l *applogger.Logger, rec repository.Metrics, fromFlag, toFlag string) error {
	fmp, err := provider.NewFMPClient(cfg.Provider.APIKey,
		provider.WithBaseURL(cfg.Provider.BaseURL),
		provider.WithRatePerMinute(cfg.Provider.RatePerMinute),
		provider.WithLogger(l),
	)
	if err != nil {
		return err
	}

	var (
		store     repository.BarStore
		publisher repository.BarPublisher
		backend   = usecase.IngestBackend(cfg.Backend.Type)
	)
	switch backend {
	case usecase.BackendKafka:
		producer, err := di.ProvideKafkaProducer(cfg)
		if err != nil {
			return err
		}
		publisher = internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.Topic)
		defer publisher.Close()
	default:
		s, err := newBarStore(ctx, cfg, l)
		if err != nil {
			return err
		}
		store = s
		defer store.Close()
	}

	in, err := usecase.NewIngestor(fmp, store, publisher, backend, rec, l)
	if err != nil {
		return err
	}

	from, to := resolveRange(cfg, fromFlag, toFlag)
	res, err := in.Run(ctx, cfg.Provider.Symbols, from, to)
	if err != nil {
		return err
	}

	l.Info("ingestion finished",
		applogger.Int("symbols", res.Symbols),
		applogger.Int("bars", res.Bars),
		applogger.Strings("failed", res.Failed),
	)
	return nil
}

func runFeatureBuild(ctx context.Context, cfg *config.Config, l *applogger.Logger, rec repository.Metrics, withLabels bool) error {
	store, err := newBarStore(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer store.Close()

	write := func(rows []models.FeatureRow) error {
		return internalrepo.WriteFeatureCSV(cfg.Features.Path, rows)
	}

	builder := usecase.NewFeatureBuilder(store, write, withLabels, rec, l)
	res, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	l.Info("feature table written",
		applogger.String("path", cfg.Features.Path),
		applogger.Int("symbols", res.Symbols),
		applogger.Int("rows", res.Rows),
	)
	return nil
}

func newBarStore(ctx context.Context, cfg *config.Config, l *applogger.Logger) (*internalrepo.ClickHouseBarStore, error) {
	chClient, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}

	store := internalrepo.NewClickHouseBarStore(chClient)
	store.SetLogger(l)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.Init(initCtx); err != nil {
		_ = chClient.Close()
		return nil, err
	}
	return store, nil
}

func resolveRange(cfg *config.Config, fromFlag, toFlag string) (time.Time, time.Time) {
	var from, to time.Time
	if fromFlag != "" {
		from, _ = util.ParseDate(fromFlag)
	} else if cfg.Provider.StartDate != "" {
		from, _ = util.ParseDate(cfg.Provider.StartDate)
	}
	if toFlag != "" {
		to, _ = util.ParseDate(toFlag)
	} else {
		now := time.Now().UTC()
		to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return from, to
}
