package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	errs "github.com/techagentng/relayhub/errors"
	"github.com/techagentng/relayhub/server/response"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type liveEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// wsHandle wraps a websocket connection behind the PushHandle
// interface. Writes are serialized and bounded by a deadline; a write
// that cannot complete in time fails the push, and the dispatcher
// treats the receiver as offline for that delivery.
type wsHandle struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	timeout time.Duration
}

func newWSHandle(conn *websocket.Conn, timeout time.Duration) *wsHandle {
	return &wsHandle{conn: conn, timeout: timeout}
}

func (h *wsHandle) Push(event string, payload interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.conn.SetWriteDeadline(time.Now().Add(h.timeout)); err != nil {
		return err
	}
	return h.conn.WriteJSON(liveEvent{Event: event, Data: payload})
}

func (h *wsHandle) Close() error {
	return h.conn.Close()
}

// handleLiveChannel upgrades the connection and registers it under the
// authenticated user id. The handshake token rides the query string
// because browsers cannot set headers on websocket dials.
func (s *Server) handleLiveChannel() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := c.Query("token")
		if accessToken == "" {
			accessToken = getTokenFromHeader(c)
		}
		if accessToken == "" {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthenticated)
			return
		}

		user, err := s.userFromToken(accessToken)
		if err != nil {
			response.JSON(c, "", errs.Status(err), nil, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		handle := newWSHandle(conn, time.Duration(s.Config.PushTimeoutMS)*time.Millisecond)
		s.PresenceRegistry.Register(user.ID, handle)
		defer func() {
			s.PresenceRegistry.Unregister(user.ID, handle)
			conn.Close()
		}()

		// The live channel is push-only; the read loop exists to
		// detect disconnects and consume control frames.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
