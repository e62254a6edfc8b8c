package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/league-night/internal/config"
	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/event"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	"github.com/riskibarqy/league-night/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/league-night/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-night/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/league-night/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/league-night/internal/platform/id"
	"github.com/riskibarqy/league-night/internal/platform/logging"
	"github.com/riskibarqy/league-night/internal/realtime"
	"github.com/riskibarqy/league-night/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	nights       night.Repository
	checkIns     checkin.Repository
	partnerships partnership.Repository
	matches      match.Repository
}

// App owns the long-lived parts of the API process: the HTTP server, the
// realtime hub, the optional change feed and the database handle.
type App struct {
	cfg    config.Config
	logger *logging.Logger
	server *http.Server
	hub    *realtime.Hub
	feed   *realtime.ChangeFeed
	db     *sqlx.DB
	cancel context.CancelFunc

	shutdownOnce sync.Once
	shutdownErr  error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, db, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		repos.nights = cache.NewNightRepository(repos.nights, cfg.CacheTTL)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	hub := realtime.NewHub(runCtx, realtime.Config{OutboxSize: cfg.RealtimeOutboxSize}, logger)

	// With the change feed on, the database triggers are the single source of
	// realtime events and the services stay silent.
	var (
		publisher event.Publisher = hub
		feed      *realtime.ChangeFeed
	)
	if cfg.RealtimeChangeFeedEnabled {
		feed = realtime.NewChangeFeed(normalizeDBURL(cfg.DBURL, cfg.ServiceName), cfg.RealtimeChangeFeedChannel, hub, logger)
		publisher = event.NopPublisher{}
	}

	admins := usecase.NewAdmins(cfg.AdminUserIDs)
	ids := idgen.NewUUIDGenerator()
	services := httpapi.Services{
		Nights:       usecase.NewNightService(repos.nights, publisher, admins, ids),
		CheckIns:     usecase.NewCheckInService(repos.nights, repos.checkIns, publisher),
		Partnerships: usecase.NewPartnershipService(repos.nights, repos.checkIns, repos.partnerships, publisher, ids),
		Matches:      usecase.NewMatchService(repos.nights, repos.partnerships, repos.matches, publisher, admins, ids, logger),
		Scores:       usecase.NewScoreService(repos.nights, repos.partnerships, repos.matches, publisher, admins),
	}

	websocketServer := realtime.NewWebsocketServer(hub, cfg.RealtimeWriteTimeout, cfg.CORSAllowedOrigins, logger)
	handler := httpapi.NewHandler(services, websocketServer, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	if len(cfg.AdminUserIDs) == 0 {
		logger.Warn("no admin users configured", "reason", "ADMIN_USER_IDS empty")
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		hub:    hub,
		feed:   feed,
		db:     db,
		cancel: cancel,
	}, nil
}

// Handler exposes the routed HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled or the listener fails, then shuts every
// component down. http.ErrServerClosed is not reported.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	var wg conc.WaitGroup

	wg.Go(func() {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr, "store_driver", a.cfg.StoreDriver)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})
	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	if a.feed != nil {
		wg.Go(func() {
			if err := a.feed.Run(feedCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("change feed stopped", "error", err)
			}
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		a.logger.Error("http server failed", "error", runErr)
	}

	stopFeed()
	if err := a.Shutdown(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	wg.Wait()

	return runErr
}

// Shutdown drains HTTP requests, stops the hub and closes the database. Only
// the first call does any work.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		a.shutdownErr = a.shutdown(ctx)
	})
	return a.shutdownErr
}

func (a *App) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	if err != nil {
		a.logger.Error("graceful shutdown failed", "error", err)
	}
	a.cancel()
	a.hub.Close()
	if a.db != nil {
		if closeErr := a.db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close database: %w", closeErr)
		}
	}
	a.logger.Info("http server stopped")

	return err
}

func openRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		store.Seed(memory.SeedNights(time.Now().UTC()))
		logger.Info("memory store seeded", "league_id", memory.DemoLeagueID, "night_id", memory.DemoNightID)
		return repositories{
			nights:       store.Nights(),
			checkIns:     store.CheckIns(),
			partnerships: store.Partnerships(),
			matches:      store.Matches(),
		}, nil, nil
	case config.StoreDriverPostgres:
		db, err := openDB(ctx, normalizeDBURL(cfg.DBURL, cfg.ServiceName), cfg.DBMaxOpenConns)
		if err != nil {
			return repositories{}, nil, err
		}
		if !cfg.Development() {
			return postgresRepositories(db), db, nil
		}
		if err := postgres.BootstrapSeed(ctx, db, memory.SeedNights(time.Now().UTC())); err != nil {
			_ = db.Close()
			return repositories{}, nil, fmt.Errorf("seed database: %w", err)
		}
		logger.Info("database seeded", "league_id", memory.DemoLeagueID, "night_id", memory.DemoNightID)
		return postgresRepositories(db), db, nil
	default:
		return repositories{}, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		nights:       postgres.NewNightRepository(db),
		checkIns:     postgres.NewCheckInRepository(db),
		partnerships: postgres.NewPartnershipRepository(db),
		matches:      postgres.NewMatchRepository(db),
	}
}
