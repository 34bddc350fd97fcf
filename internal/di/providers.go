package di

import (
	"context"
	"fmt"

	"CapitolPulse/internal/domain/models"
	"CapitolPulse/internal/domain/repository"
	"CapitolPulse/internal/handler/api"
	"CapitolPulse/internal/service/aggregator"
	"CapitolPulse/internal/service/ratelimit"
	"CapitolPulse/internal/usecase"
	pkgcache "CapitolPulse/pkg/cache"
	"CapitolPulse/pkg/config"
	pkghttp "CapitolPulse/pkg/http"
	pkgkafka "CapitolPulse/pkg/kafka"
	"CapitolPulse/pkg/logger"
	"CapitolPulse/pkg/metrics"
	"CapitolPulse/pkg/server"

	"github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
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
	return metrics.New()
}

// ProvideSnapshotCache creates the snapshot layer: layered memory+Redis when
// Redis is configured, memory-only otherwise.
func ProvideSnapshotCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		), nil
	}

	redis, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redis,
		pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
	), nil
}

// ProvideAggregator creates the aggregation API client.
func ProvideAggregator(cfg *config.Config, l *logger.Logger) repository.Aggregator {
	return aggregator.NewClient(cfg.Aggregator.BaseURL,
		aggregator.WithHTTPClient(pkghttp.NewClient(pkghttp.WithTimeout(cfg.Aggregator.Timeout))),
		aggregator.WithRateLimit(ratelimit.New(), cfg.Aggregator.RateCapacity, cfg.Aggregator.RatePerSec),
		aggregator.WithLogger(l),
	)
}

func storeConfig(cfg *config.Config, dataset string) usecase.StoreConfig {
	return usecase.StoreConfig{
		Dataset:       dataset,
		Staleness:     cfg.Cache.Staleness,
		EvictionGrace: cfg.Cache.EvictionGrace,
		SweepInterval: cfg.Cache.SweepInterval,
		SnapshotTTL:   cfg.Cache.SnapshotTTL,
	}
}

// ProvideLeaderboardStore creates the leaderboard query store.
func ProvideLeaderboardStore(
	cfg *config.Config,
	agg repository.Aggregator,
	snapshots pkgcache.Service,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.Store[*models.LeaderboardPayload] {
	return usecase.NewStore(storeConfig(cfg, "leaderboard"), agg.Leaderboard,
		usecase.WithSnapshots[*models.LeaderboardPayload](snapshots),
		usecase.WithMetrics[*models.LeaderboardPayload](m),
		usecase.WithStoreLogger[*models.LeaderboardPayload](l),
	)
}

// ProvideSectorStore creates the sector stats query store.
func ProvideSectorStore(
	cfg *config.Config,
	agg repository.Aggregator,
	snapshots pkgcache.Service,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.Store[*models.SectorPayload] {
	return usecase.NewStore(storeConfig(cfg, "sectors"), agg.Sectors,
		usecase.WithSnapshots[*models.SectorPayload](snapshots),
		usecase.WithMetrics[*models.SectorPayload](m),
		usecase.WithStoreLogger[*models.SectorPayload](l),
	)
}

// ProvideTradeStore creates the trade feed query store.
func ProvideTradeStore(
	cfg *config.Config,
	agg repository.Aggregator,
	snapshots pkgcache.Service,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.Store[[]models.Trade] {
	return usecase.NewStore(storeConfig(cfg, "trades"), agg.Trades,
		usecase.WithSnapshots[[]models.Trade](snapshots),
		usecase.WithMetrics[[]models.Trade](m),
		usecase.WithStoreLogger[[]models.Trade](l),
	)
}

// ProvideDisclosureInvalidator creates the Kafka disclosure event handler.
func ProvideDisclosureInvalidator(
	cfg *config.Config,
	leaderboard *usecase.Store[*models.LeaderboardPayload],
	sectors *usecase.Store[*models.SectorPayload],
	trades *usecase.Store[[]models.Trade],
	snapshots pkgcache.Service,
	l *logger.Logger,
) *usecase.DisclosureInvalidator {
	return usecase.NewDisclosureInvalidator(cfg.Kafka.Topic, leaderboard, sectors, trades, snapshots, l)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when Kafka is
// disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.RetryMax, cfg.Kafka.BackoffMin, cfg.Kafka.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.MinBytes, cfg.Kafka.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideDashboardHandler creates the REST handler.
func ProvideDashboardHandler(
	l *logger.Logger,
	leaderboard *usecase.Store[*models.LeaderboardPayload],
	sectors *usecase.Store[*models.SectorPayload],
	trades *usecase.Store[[]models.Trade],
) *api.DashboardHandler {
	return api.NewDashboardHandler(l, leaderboard, sectors, trades)
}

// ProvideLiveHandler creates the websocket handler. The refresh interval
// tracks the staleness threshold so live sessions revalidate as soon as
// their data ages out.
func ProvideLiveHandler(
	cfg *config.Config,
	l *logger.Logger,
	leaderboard *usecase.Store[*models.LeaderboardPayload],
	sectors *usecase.Store[*models.SectorPayload],
	trades *usecase.Store[[]models.Trade],
) *api.LiveHandler {
	return api.NewLiveHandler(l, leaderboard, sectors, trades, cfg.Cache.Staleness)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	leaderboard *usecase.Store[*models.LeaderboardPayload],
	sectors *usecase.Store[*models.SectorPayload],
	trades *usecase.Store[[]models.Trade],
	snapshots pkgcache.Service,
	consumer *pkgkafka.Consumer,
	invalidator *usecase.DisclosureInvalidator,
	dashboard *api.DashboardHandler,
	live *api.LiveHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.HookFuncs{
			Err: func(_ context.Context, topic string, _ kafka.Message, _ []byte, err error) {
				l.Warn("kafka handler error", logger.String("topic", topic), logger.Error(err))
			},
		})
	}
	return server.New(cfg, l, leaderboard, sectors, trades, snapshots, consumer, invalidator, dashboard, live)
}
