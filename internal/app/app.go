// Package app initializes and holds the long-lived services a scan needs,
// acting as the composition root for the CLI commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tickerscout/tickerscout/internal/clock/system"
	"github.com/tickerscout/tickerscout/internal/config"
	"github.com/tickerscout/tickerscout/internal/extract"
	"github.com/tickerscout/tickerscout/internal/id/uuid"
	"github.com/tickerscout/tickerscout/internal/metrics"
	"github.com/tickerscout/tickerscout/internal/ops"
	"github.com/tickerscout/tickerscout/internal/reddit"
	"github.com/tickerscout/tickerscout/internal/registry"
	"github.com/tickerscout/tickerscout/internal/storage/memory"
	"github.com/tickerscout/tickerscout/internal/storage/postgres"
	"github.com/tickerscout/tickerscout/internal/tracker"
)

// pinger is what the readiness probe needs from a mention store.
type pinger interface {
	Ping(ctx context.Context) error
}

// App holds the shared services for one process: config, logger, the frozen
// registry snapshot, the stores, and the optional ops server.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *registry.Snapshot
	mentions tracker.MentionStore
	runs     tracker.RunStore
	health   pinger
	pool     *pgxpool.Pool
	ops      *ops.Server
	clock    tracker.Clock
	ids      tracker.IDGenerator
}

// New initializes all services from cfg, failing fast when a critical one
// (the database) cannot be reached. The registry load never fails the
// startup; it degrades through its fallback chain instead.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	snapshot := registry.NewLoader(registry.LoaderConfig{
		URL:          cfg.Registry.URL,
		ContactEmail: cfg.Registry.ContactEmail,
		CachePath:    cfg.Registry.CachePath,
		Timeout:      cfg.RegistryTimeout(),
	}, logger.Named("registry")).Load(ctx)
	if snapshot.Degraded() {
		logger.Warn("VALIDATION DEGRADED: registry is not the live SEC set; mention output may be suppressed",
			zap.String("source", string(snapshot.Source())),
			zap.Int("symbols", snapshot.Len()))
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: snapshot,
		clock:    system.New(),
		ids:      uuid.NewGenerator(),
	}

	switch cfg.Database.Provider {
	case "postgres":
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:      cfg.Database.DSN,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool, cfg.Database.Dedupe); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		mentionStore, err := postgres.NewMentionStore(pool, cfg.Database.Dedupe)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init mention store: %w", err)
		}
		runStore, err := postgres.NewRunStore(pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init run store: %w", err)
		}
		a.pool = pool
		a.mentions = mentionStore
		a.runs = runStore
		a.health = mentionStore
		logger.Info("using postgres mention store", zap.Bool("dedupe", cfg.Database.Dedupe))
	case "memory":
		mentionStore := memory.NewMentionStore()
		a.mentions = mentionStore
		a.runs = memory.NewRunStore()
		a.health = mentionStore
		logger.Info("using in-memory mention store; rows are discarded at exit")
	default:
		return nil, fmt.Errorf("unknown database.provider %q", cfg.Database.Provider)
	}

	if cfg.Ops.Enabled {
		a.ops = ops.NewServer(cfg.Ops.Addr, a.ready, logger.Named("ops"))
		a.ops.Start()
	}

	return a, nil
}

// ready is the ops readiness probe: registry usable and store reachable.
func (a *App) ready(ctx context.Context) error {
	if a.registry.Len() == 0 {
		return fmt.Errorf("registry is empty")
	}
	if err := a.health.Ping(ctx); err != nil {
		return fmt.Errorf("mention store: %w", err)
	}
	return nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Registry returns the frozen registry snapshot for this process.
func (a *App) Registry() *registry.Snapshot {
	return a.registry
}

// Mentions exposes the mention store, primarily for tests and tooling.
func (a *App) Mentions() tracker.MentionStore {
	return a.mentions
}

// Scan runs one full traversal of the subreddit and records the run. An
// empty subreddit falls back to the configured default.
func (a *App) Scan(ctx context.Context, subreddit string) (tracker.RunStats, error) {
	if subreddit == "" {
		subreddit = a.cfg.Scan.Subreddit
	}
	if subreddit == "" {
		return tracker.RunStats{}, fmt.Errorf("no subreddit given: pass one as an argument or set scan.subreddit")
	}

	client := reddit.NewClient(reddit.ClientConfig{
		UserAgent:  a.cfg.Reddit.UserAgent,
		Timeout:    a.cfg.RedditTimeout(),
		Cooldown:   a.cfg.RedditCooldown(),
		MaxRetries: a.cfg.Reddit.MaxRetries,
		QPS:        a.cfg.Reddit.QPS,
		Burst:      a.cfg.Reddit.Burst,
	}, a.logger.Named("reddit"))

	validator := tracker.NewValidator(extract.NewRegex(), a.registry, tracker.DefaultExclusions())
	scheduler := tracker.NewScheduler(
		client,
		reddit.NewParser(),
		reddit.NewURLs(a.cfg.Reddit.BaseURL),
		validator,
		a.mentions,
		tracker.Config{
			Posts:              a.cfg.Scan.Posts,
			CommentsPerPost:    a.cfg.Scan.CommentsPerPost,
			RepliesPerComment:  a.cfg.Scan.RepliesPerComment,
			Concurrency:        a.cfg.Scan.Concurrency,
			MaxPersistFailures: a.cfg.Scan.MaxPersistFailures,
		},
		a.logger.Named("scan"),
	)

	started := a.clock.Now()
	stats, runErr := scheduler.Run(ctx, subreddit)
	finished := a.clock.Now()

	a.recordRun(ctx, subreddit, started, finished, stats)

	if a.registry.Degraded() {
		a.logger.Warn("run completed with a degraded registry; mention counts may be artificially low",
			zap.String("registry_source", string(a.registry.Source())))
	}
	return stats, runErr
}

// recordRun writes the bookkeeping row. A failure here is logged, never
// raised: the traversal's work is already durable.
func (a *App) recordRun(ctx context.Context, subreddit string, started, finished time.Time, stats tracker.RunStats) {
	id, err := a.ids.NewID()
	if err != nil {
		a.logger.Warn("generate run id", zap.Error(err))
		return
	}
	rec := tracker.RunRecord{
		ID:             id,
		Subreddit:      subreddit,
		StartedAt:      started,
		FinishedAt:     finished,
		RegistrySource: string(a.registry.Source()),
		Stats:          stats,
	}
	if err := a.runs.RecordRun(ctx, rec); err != nil {
		a.logger.Warn("record run", zap.String("run_id", id), zap.Error(err))
	}
}

// Close gracefully shuts down all services.
func (a *App) Close() {
	if a.ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.ops.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown ops server", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}
