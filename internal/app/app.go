package app

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"internwatch/internal/config"
	"internwatch/internal/repositories"
	"internwatch/internal/scheduler"
	"internwatch/internal/services/watch"
	"internwatch/internal/store"
)

type App struct {
	Config       *config.Config
	Pool         *pgxpool.Pool
	SQLiteDB     *sql.DB
	Repo         repositories.NotifiedRepository
	Store        *store.Store
	Source       watch.Source
	Notifier     watch.Notifier
	WatchService *watch.Service
	Scheduler    *scheduler.Scheduler
	Server       *http.Server

	ownsPool     bool
	ownsSQLiteDB bool
}

func (a *App) Start() error {
	if err := a.Scheduler.Start(); err != nil {
		return err
	}

	go func() {
		log.Printf("HTTP server listening on %s", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	return nil
}

// Shutdown stops the scheduler first, waiting for an in-flight cycle to
// finish its commits, then drains the HTTP server and closes the state
// backend.
func (a *App) Shutdown(ctx context.Context) error {
	a.Scheduler.Stop()

	err := a.Server.Shutdown(ctx)

	if a.ownsPool && a.Pool != nil {
		a.Pool.Close()
	}
	if a.ownsSQLiteDB && a.SQLiteDB != nil {
		_ = a.SQLiteDB.Close()
	}
	return err
}
