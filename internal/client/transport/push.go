package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/gorilla/websocket"
)

// PushChannel is an open websocket delivering server events. It does not
// reconnect; Done is closed when the read loop ends for any reason.
type PushChannel struct {
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
	err  error
}

// pushURL turns http(s)://host/base into ws(s)://host/base/ws?token=...
func (c *Client) pushURL(token string) string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = c.base.Path + "/ws"
	u.RawQuery = url.Values{common.TokenQueryParam: {token}}.Encode()
	return u.String()
}

// Subscribe opens the push channel and calls handler for each event, in
// arrival order, from a single goroutine.
func (c *Client) Subscribe(ctx context.Context, token string, handler func(models.Event)) (*PushChannel, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.pushURL(token), nil)
	if err != nil {
		if resp != nil {
			return nil, errorForStatus(resp.StatusCode, nil)
		}
		return nil, fmt.Errorf("%w: dial push channel: %v", common.ErrTransport, err)
	}

	pc := &PushChannel{conn: conn, done: make(chan struct{})}

	go func() {
		defer close(pc.done)
		for {
			var ev models.Event
			if err := conn.ReadJSON(&ev); err != nil {
				pc.err = err
				c.logger.Debug(ctx, "push channel read loop ended", "error", err)
				return
			}
			handler(ev)
		}
	}()

	return pc, nil
}

// Done is closed once the channel stops delivering.
func (p *PushChannel) Done() <-chan struct{} {
	return p.done
}

// Err reports why the read loop ended; valid once Done is closed.
func (p *PushChannel) Err() error {
	<-p.done
	return p.err
}

// Close shuts the connection and waits for the read loop. Safe to call
// repeatedly and from several goroutines, but not from the event handler.
func (p *PushChannel) Close() {
	p.once.Do(func() {
		_ = p.conn.Close()
	})
	<-p.done
}
