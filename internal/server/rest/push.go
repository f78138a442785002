package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// clients are native apps and CLIs, not browsers
	CheckOrigin: func(*http.Request) bool { return true },
}

// push upgrades to a websocket and streams the owner's events as
// {type, payload} JSON until either side goes away.
func (s *Server) push(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(common.TokenQueryParam)
	if token == "" {
		s.writeError(w, r, common.ErrUnauthorized)
		return
	}
	ownerID, err := s.users.Authenticate(token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		s.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(ownerID)
	defer sub.Close()

	ctx := r.Context()
	s.logger.Info(ctx, "push channel opened", "owner", ownerID)
	defer s.logger.Info(ctx, "push channel closed", "owner", ownerID)

	// reader: consumes control frames and notices the client leaving
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case <-gone:
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Warn(ctx, "push write failed", "owner", ownerID, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
