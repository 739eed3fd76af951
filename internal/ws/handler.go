package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/HerbHall/printwatch/internal/auth"
)

// Handler serves the alert subscription endpoint.
type Handler struct {
	hub       *Hub
	tokens    *auth.TokenService
	onConnect func()
	logger    *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates the subscription handler. onConnect, if set, runs after
// each subscriber registers; the relay uses it to flush pending events.
func NewHandler(hub *Hub, tokens *auth.TokenService, onConnect func(), logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: hub, tokens: tokens, onConnect: onConnect, logger: logger}
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/alerts", h.handleAlertStream)
}

// handleAlertStream upgrades the connection and streams relay broadcasts.
func (h *Handler) handleAlertStream(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on the WebSocket handshake.
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token parameter", http.StatusUnauthorized)
		return
	}
	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin is not checked; the token authenticates the subscriber.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan Message, 64),
		logger: h.logger,
	}
	h.hub.Register(client)
	if h.onConnect != nil {
		h.onConnect()
	}

	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// Alerts sent by a subscriber are rebroadcast to everyone.
	client.readPump(ctx, h.hub.Broadcast)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}
