// Command coinboard serves the crypto market dashboard: a simulated asset catalog,
// watchlists with notes, refresh stream settings and the dashboard session API.
//
// Usage:
//
//	coinboard                       (defaults, in-memory watchlists)
//	coinboard --config config.yaml
//	coinboard --setup               (interactive wizard, writes config.gen.yaml)
//
// Environment (also read from .env):
//
//	COINBOARD_ADDR, COINBOARD_STORAGE, COINBOARD_REDIS_ADDR, COINBOARD_REDIS_PASSWORD,
//	COINBOARD_LOG_LEVEL, COINBOARD_CATALOG_SEED
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/coinboard/config"
	"github.com/vadiminshakov/coinboard/internal/app"
	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/events"
	"github.com/vadiminshakov/coinboard/internal/services"
	"github.com/vadiminshakov/coinboard/internal/services/refresh"
	"github.com/vadiminshakov/coinboard/internal/services/watchlist"
	"github.com/vadiminshakov/coinboard/internal/setup"
	"github.com/vadiminshakov/coinboard/internal/storage/journal"
	"github.com/vadiminshakov/coinboard/internal/storage/watchlists"
	"github.com/vadiminshakov/coinboard/internal/web"
)

func main() {
	_ = godotenv.Load()

	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if flags.Setup {
		path, err := setup.RunTUI()
		if err != nil {
			log.Fatal(err)
		}
		flags.ConfigPath = path
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("coinboard stopped", zap.Error(err))
	}
	logger.Info("coinboard stopped")
}

func newLogger(c config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.Level)

	return zc.Build()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	var wal *journal.WALStore
	if !cfg.Journal.Disabled {
		wal, err = journal.NewWALStore(cfg.Journal.Dir)
		if err != nil {
			return errors.Wrap(err, "open change journal")
		}
		defer wal.Close()
	}

	changes := events.NewBroadcaster[domain.ChangeEventRecord](0)
	ticks := events.NewBroadcaster[domain.StreamTick](0)
	recorder := journal.NewRecorder(logger.With(zap.String("component", "journal")), wal, changes)

	state, err := services.NewSeededBackend(ctx, logger,
		services.BackendOptions{CatalogSize: cfg.Catalog.Size, Seed: cfg.Catalog.Seed},
		watchlist.NewManager(logger.With(zap.String("component", "watchlists")), store, recorder),
		recorder)
	if err != nil {
		return errors.Wrap(err, "seed backend")
	}

	controller := app.NewController(state.Backend, logger.With(zap.String("component", "controller")))
	if err := controller.Load(ctx); err != nil {
		// the session stays usable, a later refresh retries
		logger.Warn("initial dashboard load failed", zap.Error(err))
	}

	server := web.NewServer(cfg.HTTP.Addr, web.Deps{
		Backend:    state.Backend,
		Controller: controller,
		Journal:    recorder,
		Changes:    changes,
		Ticks:      ticks,
	}, logger.With(zap.String("component", "web")))

	g, ctx := errgroup.WithContext(ctx)

	if !cfg.Scheduler.Disabled {
		scheduler := refresh.NewScheduler(logger.With(zap.String("component", "scheduler")),
			state.Refresh, state.Simulator, ticks, cfg.Scheduler.Resolution)
		g.Go(func() error {
			return scheduler.Run(ctx)
		})
	}

	g.Go(func() error {
		if len(cfg.HTTP.TLSDomains) > 0 {
			return server.StartWithAutoTLS(ctx, cfg.HTTP.TLSDomains, cfg.HTTP.TLSCacheDir)
		}
		return server.Start(ctx)
	})

	logger.Info("coinboard started",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("storage", cfg.Storage.Backend),
		zap.Int("assets", cfg.Catalog.Size),
		zap.Bool("journal", wal != nil))

	return g.Wait()
}

func openStore(ctx context.Context, c config.StorageConfig) (watchlists.Store, error) {
	if c.Backend != config.StorageRedis {
		return watchlists.NewMemoryStore(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := watchlists.NewRedisStore(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB, c.RedisPrefix)
	if err != nil {
		return nil, errors.Wrapf(err, "connect redis %s", c.RedisAddr)
	}
	return store, nil
}
