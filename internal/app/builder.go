package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"internwatch/internal/config"
	"internwatch/internal/db"
	"internwatch/internal/feed"
	"internwatch/internal/httpapi"
	"internwatch/internal/notify"
	"internwatch/internal/repositories"
	pgrepo "internwatch/internal/repositories/postgres"
	sqliterepo "internwatch/internal/repositories/sqlite"
	"internwatch/internal/scheduler"
	"internwatch/internal/services/watch"
	"internwatch/internal/store"
)

type Builder struct {
	cfg          *config.Config
	basePath     string
	ensureSchema bool

	pool     *pgxpool.Pool
	repo     repositories.NotifiedRepository
	notifier watch.Notifier
	source   watch.Source

	scheduler *scheduler.Scheduler
	server    *http.Server
}

type BuilderOption func(*Builder)

func NewBuilder(cfg *config.Config, options ...BuilderOption) *Builder {
	builder := &Builder{
		cfg:          cfg,
		ensureSchema: true,
	}
	for _, option := range options {
		option(builder)
	}
	return builder
}

func WithBasePath(basePath string) BuilderOption {
	return func(b *Builder) {
		b.basePath = basePath
	}
}

func WithEnsureSchema(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.ensureSchema = enabled
	}
}

func WithDBPool(pool *pgxpool.Pool) BuilderOption {
	return func(b *Builder) {
		b.pool = pool
	}
}

func WithRepository(repo repositories.NotifiedRepository) BuilderOption {
	return func(b *Builder) {
		b.repo = repo
	}
}

func WithNotifier(notifier watch.Notifier) BuilderOption {
	return func(b *Builder) {
		b.notifier = notifier
	}
}

func WithSource(source watch.Source) BuilderOption {
	return func(b *Builder) {
		b.source = source
	}
}

func WithScheduler(scheduler *scheduler.Scheduler) BuilderOption {
	return func(b *Builder) {
		b.scheduler = scheduler
	}
}

func WithHTTPServer(server *http.Server) BuilderOption {
	return func(b *Builder) {
		b.server = server
	}
}

func (b *Builder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, errors.New("config is required")
	}

	basePath := b.basePath
	if basePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		basePath = wd
	}

	app := &App{Config: b.cfg}

	if b.repo == nil {
		switch b.cfg.StoreDriver {
		case "sqlite":
			sqlDB, err := db.OpenSQLite(b.cfg.SQLitePath)
			if err != nil {
				return nil, err
			}
			app.SQLiteDB = sqlDB
			app.ownsSQLiteDB = true
			b.repo = sqliterepo.NewNotifiedRepository(sqlDB)
		default:
			if b.pool == nil {
				pool, err := db.NewPool(ctx, b.cfg.PostgresDSN())
				if err != nil {
					return nil, err
				}
				b.pool = pool
				app.ownsPool = true
			}
			app.Pool = b.pool

			if b.ensureSchema {
				path, err := filepath.Abs(basePath)
				if err != nil {
					return nil, err
				}
				if err := db.EnsureSchema(ctx, b.pool, path); err != nil {
					return nil, err
				}
			}
			b.repo = pgrepo.NewNotifiedRepository(b.pool)
		}
	}
	app.Repo = b.repo

	app.Store = store.New(app.Repo, b.cfg.StoreTimeout)
	if err := app.Store.Load(ctx); err != nil {
		return nil, err
	}

	if b.notifier == nil {
		b.notifier = notify.NewSender(notify.Config{
			Token:       b.cfg.DiscordToken,
			Channels:    b.cfg.DiscordChannels,
			MaxAttempts: b.cfg.DispatchMaxAttempts,
			BackoffBase: b.cfg.DispatchBackoffBase,
			BackoffMax:  b.cfg.DispatchBackoffMax,
			MinInterval: time.Second,
		})
	}
	app.Notifier = b.notifier

	if b.source == nil {
		b.source = feed.NewGitSource(b.cfg.FeedRepoURL, b.cfg.FeedLocalPath, b.cfg.FeedJSONPath)
	}
	app.Source = b.source

	app.WatchService = watch.NewService(app.Source, app.Store, app.Notifier, b.cfg.DispatchWorkers)

	if b.scheduler == nil {
		b.scheduler = scheduler.New(b.cfg.CheckInterval, app.WatchService)
	}
	app.Scheduler = b.scheduler

	if b.server == nil {
		handler := httpapi.NewHandler(app.WatchService)
		b.server = &http.Server{
			Addr:              ":" + b.cfg.HTTPPort,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	app.Server = b.server

	return app, nil
}
