package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is handled at the HTTP level
	},
}

// ActivityHub fans account events out to each user's open activity feeds.
// Publish never blocks: a connection that cannot keep up is dropped.
type ActivityHub struct {
	mu     sync.RWMutex
	conns  map[string]map[*client]struct{}
	auth   *service.AuthService
	logger *zap.Logger
}

type client struct {
	send chan []byte
}

// NewActivityHub creates a new ActivityHub.
func NewActivityHub(auth *service.AuthService, logger *zap.Logger) *ActivityHub {
	return &ActivityHub{
		conns:  make(map[string]map[*client]struct{}),
		auth:   auth,
		logger: logger,
	}
}

// Publish sends an event to every feed the user has open. Safe to call with
// no listeners.
func (h *ActivityHub) Publish(userID string, e domain.ActivityEvent) {
	payload, err := json.Marshal(e)
	if err != nil {
		h.logger.Warn("failed to encode activity event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		select {
		case c.send <- payload:
		default:
			// Slow consumer, drop the event rather than block the caller
		}
	}
}

// Handle upgrades HTTP to WebSocket and streams the user's activity feed.
// URL: /ws/activity?token=JWT_TOKEN
func (h *ActivityHub) Handle(w http.ResponseWriter, r *http.Request) {
	// Authenticate via query param token
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.VerifyToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{send: make(chan []byte, 16)}
	h.register(claims.Sub, c)
	defer h.unregister(claims.Sub, c)

	h.logger.Info("activity feed connected", zap.String("user", claims.Email))

	// Drain reads so pings and close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-c.send:
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *ActivityHub) register(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*client]struct{})
	}
	h.conns[userID][c] = struct{}{}
}

func (h *ActivityHub) unregister(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], c)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}
