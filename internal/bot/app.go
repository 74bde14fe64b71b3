// Package bot wires configuration, storage, services, and the messaging
// transport into a running process, and handles graceful shutdown.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dprokopov/autofilterbot/internal/bot/config"
	"github.com/dprokopov/autofilterbot/internal/bot/delivery"
	"github.com/dprokopov/autofilterbot/internal/bot/indexer"
	"github.com/dprokopov/autofilterbot/internal/bot/repositories/repomanager"
	"github.com/dprokopov/autofilterbot/internal/bot/router"
	"github.com/dprokopov/autofilterbot/internal/bot/search"
	"github.com/dprokopov/autofilterbot/internal/bot/telegram"
	"github.com/dprokopov/autofilterbot/internal/logging"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	repoman   repomanager.RepositoryManager
	transport *telegram.Transport
	router    *router.Router
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	repo := rm.Records(db)

	transport, err := telegram.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	idx := indexer.NewService(repo, cfg.FilesChannelID, logger)
	srch := search.NewService(repo, cfg.SearchPageCap)
	del := delivery.NewService(transport, logger,
		cfg.DeliveryMaxAttempts, cfg.DeliveryMaxBackoff, cfg.DeliverySpacing)
	rtr := router.New(transport, repo, idx, srch, del, router.Mode(cfg.DeliveryMode), logger)

	return &App{
		config:    cfg,
		logger:    logger,
		db:        db,
		repoman:   rm,
		transport: transport,
		router:    rtr,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run pings the database, applies migrations, and polls the transport until
// the context is cancelled or a signal arrives.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}
	if err := app.repoman.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("db migration error: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.transport.Run(ctx, app.router); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "Shutdown complete")
	return nil
}
