package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

type fakePush struct {
	done chan struct{}
	once sync.Once
}

func newFakePush() *fakePush {
	return &fakePush{done: make(chan struct{})}
}

func (p *fakePush) Done() <-chan struct{} { return p.done }
func (p *fakePush) Close()                { p.once.Do(func() { close(p.done) }) }

func (p *fakePush) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// fakeRemote is an in-memory server keyed by ID.
type fakeRemote struct {
	mu      sync.Mutex
	items   []models.Movie
	nextID  int
	creates []models.Movie
	updates []models.Movie
	lists   int

	listErr   error
	updateErr error

	// listGate, when set, blocks List until it is closed
	listGate    chan struct{}
	listEntered chan struct{}

	pushes   []*fakePush
	handlers []func(models.Event)
}

func (r *fakeRemote) List(ctx context.Context, token string) ([]models.Movie, error) {
	r.mu.Lock()
	gate, entered := r.listGate, r.listEntered
	r.mu.Unlock()
	if gate != nil {
		close(entered)
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return slices.Clone(r.items), nil
}

func (r *fakeRemote) Create(ctx context.Context, token string, m models.Movie) (models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = fmt.Sprintf("srv-%d", r.nextID)
	r.creates = append(r.creates, m)
	r.items = append(r.items, m)
	return m, nil
}

func (r *fakeRemote) Update(ctx context.Context, token string, m models.Movie) (models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, m)
	if r.updateErr != nil {
		return models.Movie{}, r.updateErr
	}
	i := slices.IndexFunc(r.items, func(it models.Movie) bool { return it.ID == m.ID })
	if i < 0 {
		return models.Movie{}, common.ErrConflict
	}
	r.items[i] = m
	return m, nil
}

func (r *fakeRemote) Subscribe(ctx context.Context, token string, h func(models.Event)) (PushChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := newFakePush()
	r.pushes = append(r.pushes, p)
	r.handlers = append(r.handlers, h)
	return p, nil
}

func (r *fakeRemote) seed(items ...models.Movie) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

func (r *fakeRemote) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = slices.DeleteFunc(r.items, func(m models.Movie) bool { return m.ID == id })
}

func (r *fakeRemote) writes() (creates, updates []models.Movie) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.creates), slices.Clone(r.updates)
}

func (r *fakeRemote) lastHandler() func(models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers[len(r.handlers)-1]
}

func (r *fakeRemote) subscriptions() []*fakePush {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.pushes)
}

type fakeNotifier struct {
	mu       sync.Mutex
	deferred []models.Movie
	// onDeferred runs after recording, outside the lock
	onDeferred func()
}

func (n *fakeNotifier) Deferred(_ context.Context, m models.Movie) {
	n.mu.Lock()
	n.deferred = append(n.deferred, m)
	hook := n.onDeferred
	n.mu.Unlock()

	if hook != nil {
		hook()
	}
}
