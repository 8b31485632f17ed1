package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-tracker/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-tracker/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-tracker/internal/config"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/workers"
)

// MemoryLocalDB selects the in-memory local store instead of SQLite.
const MemoryLocalDB = ":memory:"

const schemaTimeout = 10 * time.Second

// Options overrides pieces of the wiring, mostly for tests.
type Options struct {
	Local  domain.LocalStore
	Remote domain.RemoteStore
	Now    func() time.Time
}

// App holds every long-lived component of the tracker.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Identity domain.StaticIdentity

	Store     *services.SyncStore
	Tracker   *services.TrackerService
	Instagram *services.InstagramService
	Notes     *services.NoteService
	Tokens    *services.TokenService
	Auth      *services.AuthService

	Saver   *workers.SaveDebouncer
	Monitor *workers.ConnectivityMonitor

	DB    *sqlx.DB
	Redis *redis.Client

	schema  *repository.PostgresRemoteStore
	closers []func() error
	cancel  context.CancelFunc
}

func New(cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Identity: domain.NewStaticIdentity(cfg.UserID),
	}
	if cfg.UserID == "" {
		logger.Warn("TRACKER_USER_ID not set, using a generated id for this run",
			zap.String("user_id", app.Identity.UserID()))
	}

	local, err := app.localStore(opts.Local)
	if err != nil {
		return nil, err
	}
	app.redisClient()

	// A typed nil inside the interface would look enabled to the store.
	var remote domain.RemoteStore
	var conn domain.Connectivity
	if opts.Remote != nil {
		remote = opts.Remote
	} else if cfg.RemoteSync {
		remote, err = app.remoteStore()
		if err != nil {
			app.close()
			return nil, err
		}
	}
	if remote != nil {
		app.Monitor = workers.NewConnectivityMonitor(remote, cfg.ConnectivityInterval, logger)
		conn = app.Monitor
	}

	app.Store = services.NewSyncStore(local, remote, conn, app.Identity, logger)

	stats := services.NewStatsEngine(cfg.StreakAnchor)
	app.Tracker = services.NewTrackerService(app.Store, stats, services.TrackerOptions{
		Mode:      cfg.HabitMode,
		WeekStart: cfg.WeekStart,
		Now:       opts.Now,
	}, logger)
	app.Saver = workers.NewSaveDebouncer(app.Tracker.Save, cfg.SaveDebounce, logger)
	app.Tracker.AttachScheduler(app.Saver)

	app.Instagram = services.NewInstagramService(app.Store, opts.Now, logger)
	app.Notes = services.NewNoteService(app.Store, opts.Now, logger)

	gate, err := passwordGate(cfg)
	if err != nil {
		app.close()
		return nil, err
	}
	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		if gate.Enabled() {
			logger.Warn("JWT_SECRET not set, sessions will not survive a restart")
		}
	}
	app.Tokens = services.NewTokenService(secret, cfg.JWTIssuer, cfg.TokenTTL, app.Identity)
	app.Auth = services.NewAuthService(gate, app.Tokens, app.Identity)

	return app, nil
}

func (a *App) localStore(override domain.LocalStore) (domain.LocalStore, error) {
	if override != nil {
		return override, nil
	}
	if a.Config.LocalDBPath == MemoryLocalDB {
		return repository.NewInMemoryLocalStore(), nil
	}

	store, err := repository.NewSQLiteLocalStore(a.Config.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: local store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// remoteStore opens the Postgres pool lazily; an unreachable server at start
// just means the tracker begins offline.
func (a *App) remoteStore() (domain.RemoteStore, error) {
	cfg := a.Config

	db, err := sqlx.Open(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	a.DB = db
	a.closers = append(a.closers, db.Close)

	pg := repository.NewPostgresRemoteStore(db)
	a.schema = pg

	if a.Redis == nil {
		return pg, nil
	}
	return repository.NewCachedRemoteStore(pg, a.Redis, a.Logger), nil
}

// redisClient connects the optional cache. Redis being down only disables
// caching and rate limiting.
func (a *App) redisClient() {
	cfg := a.Config.Redis
	if !cfg.Enabled {
		return
	}

	rdb, err := cache.NewRedisClient(cache.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		a.Logger.Warn("redis unavailable, cache and rate limiting disabled", zap.Error(err))
		return
	}
	a.Redis = rdb
	a.closers = append(a.closers, rdb.Close)
}

func passwordGate(cfg *config.Config) (*domain.PasswordGate, error) {
	switch {
	case cfg.PasswordHash != "":
		return domain.NewPasswordGateFromHash(cfg.PasswordHash), nil
	case cfg.Password != "":
		gate, err := domain.NewPasswordGate(cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: password gate: %w", err)
		}
		return gate, nil
	default:
		return domain.NewPasswordGateFromHash(""), nil
	}
}

// Start launches the background workers and loads every dataset.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Monitor != nil {
		if a.Monitor.Check(ctx) && a.schema != nil {
			schemaCtx, done := context.WithTimeout(ctx, schemaTimeout)
			if err := a.schema.EnsureSchema(schemaCtx); err != nil {
				a.Logger.Warn("could not prepare remote schema", zap.Error(err))
			}
			done()
		}
		a.Monitor.Start(runCtx)
	}
	a.Saver.Start(runCtx)

	if err := a.Tracker.Load(ctx); err != nil {
		return fmt.Errorf("bootstrap: load habits: %w", err)
	}
	if err := a.Instagram.Load(ctx); err != nil {
		return fmt.Errorf("bootstrap: load instagram: %w", err)
	}
	if err := a.Notes.Load(ctx); err != nil {
		return fmt.Errorf("bootstrap: load notes: %w", err)
	}

	a.Logger.Info("tracker ready",
		zap.String("user_id", a.Identity.UserID()),
		zap.String("mode", string(a.Tracker.Mode())),
		zap.String("sync", string(a.Store.Status().State)),
	)
	return nil
}

// Shutdown flushes the pending save, stops the workers and releases
// connections.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.cancel != nil {
		if err := a.Saver.Flush(ctx); err != nil && !errors.Is(err, domain.ErrRemoteSync) {
			errs = append(errs, fmt.Errorf("flush pending save: %w", err))
		}
		a.cancel()
		a.wait(ctx, a.Saver.Done())
		if a.Monitor != nil {
			a.wait(ctx, a.Monitor.Done())
		}
	}

	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) wait(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
