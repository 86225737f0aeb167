package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"othershorts-backend/internal/middleware"
	"othershorts-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients send no Origin
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub         *services.NotifyHub
	userService *services.UserService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.NotifyHub, userService *services.UserService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		userService: userService,
	}
}

// HandleWebSocket handles GET /ws. The user is taken from ?token= when tokens
// are enabled and from ?userId= otherwise.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	if err := h.hub.SendToUser(userID, services.WSMessage{
		Type:      "connected",
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send connected message")
		return
	}

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(userID, "Invalid message format")
			continue
		}

		h.handleMessage(userID, msg)
	}
}

func (h *WebSocketHandler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	q := r.URL.Query()

	if !h.userService.TokensEnabled() {
		userID := q.Get("userId")
		if userID == "" {
			respondError(w, "userId required", http.StatusUnauthorized)
			return "", false
		}
		return userID, true
	}

	userID, err := middleware.ValidateWebSocketToken(q.Get("token"), h.userService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(userID string, msg services.WSMessage) {
	switch msg.Type {
	case "ping":
		if err := h.hub.SendToUser(userID, services.WSMessage{Type: "pong", Timestamp: time.Now().UnixMilli()}); err != nil {
			log.Debug().Err(err).Str("user_id", userID).Msg("Failed to answer ping")
		}
	default:
		h.sendError(userID, "Unknown message type")
	}
}

// sendError sends an error message to a user
func (h *WebSocketHandler) sendError(userID, message string) {
	err := h.hub.SendToUser(userID, services.WSMessage{
		Type:    "error",
		Message: message,
	})
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}
