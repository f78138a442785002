package transport

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pushServer(t *testing.T, events []models.Event, hold chan struct{}) http.Handler {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get(common.TokenQueryParam) != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
		if hold != nil {
			<-hold
		}
	})
	return mux
}

func TestPushURL(t *testing.T) {
	c, err := New("https://example.com/base", logging.Nop{})
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/base/ws?token=a%2Bb", c.pushURL("a+b"))
}

func TestSubscribe_DeliversInOrder(t *testing.T) {
	events := []models.Event{
		{Type: common.EventUpdated, Payload: models.Movie{ID: "1", Title: "X"}},
		{Type: common.EventUpdated, Payload: models.Movie{ID: "1", Title: "Y"}},
	}
	hold := make(chan struct{})
	defer close(hold)
	c, _ := newClient(t, pushServer(t, events, hold))

	var mu sync.Mutex
	var got []string
	pc, err := c.Subscribe(context.Background(), "tok", func(ev models.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.Payload.Title)
	})
	require.NoError(t, err)
	defer pc.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"X", "Y"}, got)
	mu.Unlock()
}

func TestSubscribe_Unauthorized(t *testing.T) {
	c, _ := newClient(t, pushServer(t, nil, nil))

	_, err := c.Subscribe(context.Background(), "bad", func(models.Event) {})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestPushChannel_DoneWhenServerLeaves(t *testing.T) {
	c, _ := newClient(t, pushServer(t, nil, nil))

	pc, err := c.Subscribe(context.Background(), "tok", func(models.Event) {})
	require.NoError(t, err)

	select {
	case <-pc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after server hung up")
	}
	assert.Error(t, pc.Err())
	pc.Close()
}

func TestPushChannel_CloseIdempotent(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	c, _ := newClient(t, pushServer(t, nil, hold))

	pc, err := c.Subscribe(context.Background(), "tok", func(models.Event) {})
	require.NoError(t, err)

	pc.Close()
	pc.Close()

	select {
	case <-pc.Done():
	default:
		t.Fatal("Done must be closed after Close")
	}
}
