package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/moviekeeper/internal/client/cache"
	"github.com/dmitrijs2005/moviekeeper/internal/client/codec"
	"github.com/dmitrijs2005/moviekeeper/internal/client/config"
	"github.com/dmitrijs2005/moviekeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/moviekeeper/internal/client/engine"
	"github.com/dmitrijs2005/moviekeeper/internal/client/state"
	"github.com/dmitrijs2005/moviekeeper/internal/client/transport"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// authClient is the account part of the transport client.
type authClient interface {
	SignUp(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// photoClient uploads photo bytes to object storage.
type photoClient interface {
	PhotoUploadURL(ctx context.Context, token string) (key, putURL string, err error)
	UploadPhoto(ctx context.Context, putURL string, data []byte) error
}

// syncEngine is what the commands need from engine.Engine.
type syncEngine interface {
	Token() string
	SetToken(ctx context.Context, token string) error
	Sync(ctx context.Context) error
	Save(ctx context.Context, m models.Movie) (models.Movie, error)
	Store() *state.Store
}

type App struct {
	auth   authClient
	photos photoClient
	engine syncEngine
	online func() bool
	// watch polls connectivity until ctx ends; nil disables it
	watch  func(ctx context.Context)
	logger logging.Logger

	reader *bufio.Reader
	out    io.Writer

	closers []func() error
}

// NewApp builds the client from cfg and resumes the stored session, if
// any. Connectivity is probed once before the first fetch.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (_ *App, err error) {
	a := &App{reader: bufio.NewReader(in), out: out}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	logger, logFile, err := logging.NewFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, logFile.Close)

	cd, err := codec.ByName(cfg.CacheCodec)
	if err != nil {
		return nil, err
	}

	c, err := cache.Open(ctx, cfg.CacheBackend, cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	a.closers = append(a.closers, c.Close)

	tc, err := transport.New(cfg.ServerURL, logger)
	if err != nil {
		return nil, err
	}
	a.auth, a.photos = tc, tc

	prober := connectivity.NewHealthProber(cfg.HealthAddr, common.HealthServiceName)
	a.closers = append(a.closers, prober.Close)

	monitor := connectivity.NewMonitor(false)
	watcher := connectivity.NewWatcher(prober, monitor, cfg.OnlineCheckInterval, logger)
	watcher.ProbeOnce(ctx)
	a.online = monitor.Current
	a.watch = watcher.Run

	eng := engine.New(engine.NewRemote(tc), c, monitor, state.NewStore(), printNotifier{w: out}, cd, logger)
	a.engine = eng
	a.closers = append(a.closers, func() error { eng.Close(); return nil })

	if _, err := eng.Restore(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

// Close releases everything NewApp opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.engine.Token() != ""
}

func (a *App) mode() Mode {
	if a.online() {
		return ModeOnline
	}
	return ModeOffline
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return fmt.Sprintf("(%s, logged out)", a.mode())
	}
	return fmt.Sprintf("(%s)", a.mode())
}

// printNotifier tells the user a write was queued.
type printNotifier struct {
	w io.Writer
}

func (n printNotifier) Deferred(_ context.Context, m models.Movie) {
	fmt.Fprintf(n.w, "Offline: %q saved locally and will be sent when the server is reachable\n", m.Title)
}
