package state

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/sahilm/fuzzy"
)

// Store owns the State. All transitions go through Reduce under one lock.
type Store struct {
	mu    sync.Mutex
	state State

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

func NewStore() *Store {
	return &Store{
		state: State{Items: []models.Movie{}},
		subs:  make(map[int]func(State)),
	}
}

// Dispatch applies ev unconditionally.
func (s *Store) Dispatch(ev Event) {
	s.mu.Lock()
	s.state = Reduce(s.state, ev)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// DispatchIf applies ev unless ctx is already done. The check and the
// transition happen under the same lock Cancel takes, so once Cancel has
// returned no dispatch guarded by the canceled context can land.
func (s *Store) DispatchIf(ctx context.Context, ev Event) bool {
	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, ev)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// Cancel runs cancel while holding the state lock.
func (s *Store) Cancel(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	snap.Items = slices.Clone(s.state.Items)
	return snap
}

// Subscribe calls fn with a snapshot after every applied event.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(snap State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Find returns the item with id.
func (s *Store) Find(id string) (models.Movie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Items, func(m models.Movie) bool { return m.ID == id })
	if i < 0 {
		return models.Movie{}, false
	}
	return s.state.Items[i], true
}

type titles []models.Movie

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

// Search returns items whose title fuzzily matches query, best first.
// An empty query returns every item.
func (s *Store) Search(query string) []models.Movie {
	items := s.Snapshot().Items
	if query == "" {
		return items
	}

	matches := fuzzy.FindFrom(query, titles(items))
	out := make([]models.Movie, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}
