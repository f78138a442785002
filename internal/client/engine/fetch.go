package engine

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/client/state"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

// loader produces the full Collection State for a session.
type loader interface {
	load(ctx context.Context, token string) ([]models.Movie, error)
}

func (e *Engine) loaderFor(online bool) loader {
	if online {
		return remoteLoader{e}
	}
	return cacheLoader{e}
}

// fetch runs the fetch protocol for s. Every state change is guarded by
// the session context, so a fetch for a replaced token never lands.
func (e *Engine) fetch(s *session) error {
	e.fetchMu.Lock()
	defer e.fetchMu.Unlock()

	if !e.store.DispatchIf(s.ctx, state.FetchStarted{}) {
		return s.ctx.Err()
	}

	items, err := e.loaderFor(e.conn.Current()).load(s.ctx, s.token)
	if err != nil {
		e.logger.Warn(s.ctx, "fetch failed", "error", err)
		e.store.DispatchIf(s.ctx, state.FetchFailed{Err: err})
		return err
	}

	if !e.store.DispatchIf(s.ctx, state.FetchSucceeded{Items: items}) {
		return s.ctx.Err()
	}
	e.logger.Debug(s.ctx, "fetch done", "items", len(items))
	return nil
}

// pendingEntry is a decoded Pending Write together with its cache key.
type pendingEntry struct {
	key   string
	movie models.Movie
}

// readPending decodes the Pending Write stored under key.
func (e *Engine) readPending(ctx context.Context, key, id string) (pendingEntry, bool, error) {
	raw, ok, err := e.cache.Get(ctx, key)
	if err != nil || !ok {
		return pendingEntry{}, false, err
	}

	var pw models.PendingWrite
	if err := e.codec.Unmarshal(raw, &pw); err != nil {
		return pendingEntry{}, false, fmt.Errorf("%w: decode %s: %v", common.ErrCache, key, err)
	}
	return pendingEntry{key: key, movie: pw.Movie(id)}, true, nil
}

// remoteLoader flushes the queue through the server, then lists.
type remoteLoader struct{ e *Engine }

func (l remoteLoader) load(ctx context.Context, token string) ([]models.Movie, error) {
	l.replay(ctx, token)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.e.remote.List(ctx, token)
}

// replay sends every Pending Write to the server. An entry is removed once
// the server accepted it, or when the server rejected it for good. Nothing
// here aborts the fetch.
func (l remoteLoader) replay(ctx context.Context, token string) {
	e := l.e

	keys, err := e.cache.Keys(ctx)
	if err != nil {
		e.logger.Error(ctx, "cannot list queued writes", "error", err)
		return
	}

	w := remoteSaver{e}
	for _, key := range keys {
		if ctx.Err() != nil {
			return
		}

		id, ok := models.ParsePendingKey(key)
		if !ok {
			continue
		}

		entry, ok, err := e.readPending(ctx, key, id)
		if err != nil {
			e.logger.Error(ctx, "skipping queued write", "key", key, "error", err)
			continue
		}
		if !ok {
			continue
		}

		_, err = w.save(ctx, token, entry.movie)
		switch {
		case err == nil:
			e.logger.Info(ctx, "queued write replayed", "key", key)
		case common.IsPermanent(err):
			e.logger.Warn(ctx, "queued write rejected, dropping it", "key", key, "error", err)
		default:
			e.logger.Warn(ctx, "queued write not replayed, keeping it", "key", key, "error", err)
			continue
		}

		if err := e.cache.Remove(ctx, key); err != nil {
			e.logger.Error(ctx, "cannot remove queued write", "key", key, "error", err)
		}
	}
}

// cacheLoader rebuilds the state from queued writes alone.
type cacheLoader struct{ e *Engine }

func (l cacheLoader) load(ctx context.Context, _ string) ([]models.Movie, error) {
	keys, err := l.e.cache.Keys(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.Movie, 0, len(keys))
	for _, key := range keys {
		id, ok := models.ParsePendingKey(key)
		if !ok {
			continue
		}
		entry, ok, err := l.e.readPending(ctx, key, id)
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, entry.movie)
		}
	}
	return items, nil
}
