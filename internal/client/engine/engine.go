// Package engine is the Sync Engine. It keeps the Collection State in step
// with the server while online and queues writes in the Local Cache while
// offline, replaying them on the next fetch.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/client/cache"
	"github.com/dmitrijs2005/moviekeeper/internal/client/codec"
	"github.com/dmitrijs2005/moviekeeper/internal/client/state"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

// Remote is the part of the transport client the engine drives.
type Remote interface {
	List(ctx context.Context, token string) ([]models.Movie, error)
	Create(ctx context.Context, token string, m models.Movie) (models.Movie, error)
	Update(ctx context.Context, token string, m models.Movie) (models.Movie, error)
	Subscribe(ctx context.Context, token string, handler func(models.Event)) (PushChannel, error)
}

// PushChannel is an open subscription to server events.
type PushChannel interface {
	Done() <-chan struct{}
	Close()
}

// Connectivity reports reachability and its transitions.
type Connectivity interface {
	Current() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Notifier tells the user a write was queued instead of sent.
type Notifier interface {
	Deferred(ctx context.Context, m models.Movie)
}

// session is everything tied to one token. ctx is canceled when the token
// is replaced or cleared.
type session struct {
	token  string
	ctx    context.Context
	cancel context.CancelFunc
	push   PushChannel
}

type Engine struct {
	remote   Remote
	cache    cache.Cache
	conn     Connectivity
	store    *state.Store
	notifier Notifier
	codec    codec.Codec
	logger   logging.Logger

	mu   sync.Mutex
	sess *session

	// fetches run one at a time so a pending write is never replayed twice
	fetchMu sync.Mutex

	unsubscribe func()
}

func New(r Remote, c cache.Cache, conn Connectivity, s *state.Store, n Notifier, cd codec.Codec, l logging.Logger) *Engine {
	e := &Engine{
		remote:   r,
		cache:    c,
		conn:     conn,
		store:    s,
		notifier: n,
		codec:    cd,
		logger:   l.With("module", "engine"),
	}
	e.unsubscribe = conn.Subscribe(e.onConnectivity)
	return e
}

// Store returns the state the engine feeds.
func (e *Engine) Store() *state.Store {
	return e.store
}

// Token returns the token of the current session, or "".
func (e *Engine) Token() string {
	if s := e.current(); s != nil {
		return s.token
	}
	return ""
}

func (e *Engine) current() *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// Restore resumes the session whose token is kept in the cache. It reports
// whether a token was found.
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	raw, ok, err := e.cache.Get(ctx, models.TokenKey)
	if err != nil {
		return false, err
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}

	e.endSession()
	e.startSession(ctx, string(raw))
	return true, nil
}

// SetToken replaces the current session. The previous session is canceled
// and its push channel closed before anything else happens; an empty token
// logs out and clears the Collection State.
func (e *Engine) SetToken(ctx context.Context, token string) error {
	e.endSession()

	if token == "" {
		e.store.Dispatch(state.FetchSucceeded{})
		if err := e.cache.Remove(ctx, models.TokenKey); err != nil {
			return fmt.Errorf("forget token: %w", err)
		}
		e.logger.Info(ctx, "session cleared")
		return nil
	}

	if err := e.cache.Set(ctx, models.TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	e.startSession(ctx, token)
	return nil
}

func (e *Engine) startSession(ctx context.Context, token string) {
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &session{token: token, ctx: sctx, cancel: cancel}

	e.mu.Lock()
	e.sess = s
	e.mu.Unlock()

	if e.conn.Current() {
		e.ensurePush(s)
	}
	_ = e.fetch(s)
}

// endSession cancels the session under the store lock, so no completion
// guarded by it can land afterwards, then closes its push channel. Close
// waits for the read loop, which dispatches into the store, so it must run
// outside that lock.
func (e *Engine) endSession() {
	e.mu.Lock()
	s := e.sess
	e.sess = nil
	e.mu.Unlock()

	if s == nil {
		return
	}

	e.store.Cancel(s.cancel)

	e.mu.Lock()
	pc := s.push
	s.push = nil
	e.mu.Unlock()

	if pc != nil {
		pc.Close()
	}
}

// ensurePush opens the push channel for s unless an open one exists.
func (e *Engine) ensurePush(s *session) {
	e.mu.Lock()
	if s.push != nil {
		select {
		case <-s.push.Done():
			s.push = nil
		default:
			e.mu.Unlock()
			return
		}
	}
	e.mu.Unlock()

	pc, err := e.remote.Subscribe(s.ctx, s.token, func(ev models.Event) { e.onPush(s, ev) })
	if err != nil {
		e.logger.Warn(s.ctx, "push channel unavailable", "error", err)
		return
	}

	e.mu.Lock()
	if s.ctx.Err() != nil || s.push != nil {
		e.mu.Unlock()
		pc.Close()
		return
	}
	s.push = pc
	e.mu.Unlock()

	e.logger.Debug(s.ctx, "push channel open")
}

func (e *Engine) onPush(s *session, ev models.Event) {
	if !ev.Mergeable() {
		e.logger.Debug(s.ctx, "ignoring push event", "type", ev.Type)
		return
	}
	if !e.store.DispatchIf(s.ctx, state.SaveSucceeded{Item: ev.Payload}) {
		e.logger.Debug(s.ctx, "discarding push event for ended session", "id", ev.Payload.ID)
	}
}

func (e *Engine) onConnectivity(online bool) {
	s := e.current()
	if s == nil {
		return
	}
	if !online {
		e.logger.Info(s.ctx, "offline, writes will be queued")
		return
	}

	e.logger.Info(s.ctx, "back online, replaying queued writes")
	e.ensurePush(s)
	_ = e.fetch(s)
}

// Sync runs the fetch protocol for the current session.
func (e *Engine) Sync(ctx context.Context) error {
	s := e.current()
	if s == nil {
		return common.ErrUnauthorized
	}
	return e.fetch(s)
}

// Save runs the save protocol for m: sent to the server when online,
// queued in the cache otherwise. Saving is always left false afterwards.
// A save that outlives its session returns context.Canceled.
func (e *Engine) Save(ctx context.Context, m models.Movie) (models.Movie, error) {
	guard, token := context.Background(), ""
	if s := e.current(); s != nil {
		guard, token = s.ctx, s.token
	}

	e.store.Dispatch(state.SaveStarted{})

	saved, err := e.saverFor(e.conn.Current()).save(ctx, token, m)
	if err != nil {
		e.logger.Warn(ctx, "save failed", "id", m.ID, "error", err)
		e.store.Dispatch(state.SaveFailed{Err: err})
		return models.Movie{}, err
	}

	// the record belongs to the session that started the save
	if !e.store.DispatchIf(guard, state.SaveSucceeded{Item: saved}) {
		e.store.Dispatch(state.SaveFailed{Err: context.Canceled})
		return models.Movie{}, context.Canceled
	}
	return saved, nil
}

// Close ends the session, keeping the stored token, and stops listening
// for connectivity changes.
func (e *Engine) Close() {
	e.unsubscribe()
	e.endSession()
}
