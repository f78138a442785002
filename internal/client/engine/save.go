package engine

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

// saver performs one write and returns the record to merge.
type saver interface {
	save(ctx context.Context, token string, m models.Movie) (models.Movie, error)
}

func (e *Engine) saverFor(online bool) saver {
	if online {
		return remoteSaver{e}
	}
	return queueSaver{e}
}

// remoteSaver writes straight to the server.
type remoteSaver struct{ e *Engine }

func (w remoteSaver) save(ctx context.Context, token string, m models.Movie) (models.Movie, error) {
	if err := m.Validate(); err != nil {
		return models.Movie{}, err
	}
	if m.Persisted() {
		return w.e.remote.Update(ctx, token, m)
	}
	return w.e.remote.Create(ctx, token, m)
}

// queueSaver stores a Pending Write and reports the record as saved.
type queueSaver struct{ e *Engine }

func (w queueSaver) save(ctx context.Context, _ string, m models.Movie) (models.Movie, error) {
	if err := m.Validate(); err != nil {
		return models.Movie{}, err
	}

	raw, err := w.e.codec.Marshal(models.NewPendingWrite(m))
	if err != nil {
		return models.Movie{}, fmt.Errorf("%w: encode pending write: %v", common.ErrCache, err)
	}

	key := models.PendingKey(m)
	if err := w.e.cache.Set(ctx, key, raw); err != nil {
		return models.Movie{}, err
	}

	w.e.logger.Info(ctx, "write queued", "key", key)
	w.e.notifier.Deferred(ctx, m)
	return m, nil
}
