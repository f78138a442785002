// Package server wires the MovieKeeper server together: storage, services,
// the REST/push endpoint and the gRPC health endpoint, with graceful shutdown
// on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/server/config"
	"github.com/dmitrijs2005/moviekeeper/internal/server/hub"
	"github.com/dmitrijs2005/moviekeeper/internal/server/photos"
	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviekeeper/internal/server/rest"
	"github.com/dmitrijs2005/moviekeeper/internal/server/services"

	gs "github.com/dmitrijs2005/moviekeeper/internal/server/grpc"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repomanager  repomanager.RepositoryManager
	hub          *hub.Hub
	userService  *services.UserService
	movieService *services.MovieService
	presigner    *photos.Presigner
}

// NewApp opens storage for c, runs migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rm, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		rm.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	h := hub.New(c.PushBuffer, logger)

	return &App{
		config:       c,
		logger:       logger,
		repomanager:  rm,
		hub:          h,
		userService:  services.NewUserService(rm, c),
		movieService: services.NewMovieService(rm, h, logger),
		presigner:    photos.NewPresigner(c),
	}, nil
}

func openStorage(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Storage {
	case config.StoragePostgres:
		return repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	case config.StorageMemory:
		return repomanager.NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", c.Storage)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.HTTPAddr, app.movieService, app.userService, app.presigner, app.hub, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage, "photos", app.presigner.Enabled())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
