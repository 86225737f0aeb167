package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"othershorts-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteTimeout = 5 * time.Second
	pushTimeout    = 10 * time.Second
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// RatingReceivedData is the payload of a rating_received message
type RatingReceivedData struct {
	Rating    int     `json:"rating"`
	Political bool    `json:"political"`
	VideoURL  *string `json:"videoUrl,omitempty"`
}

// PushSender delivers a notification to a device token
type PushSender interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}

// PushTokenLookup resolves the device token of a user
type PushTokenLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NotifyHub manages WebSocket connections of online uploaders and falls back
// to push notifications for offline ones
type NotifyHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
	users       PushTokenLookup
	push        PushSender
	pushes      sync.WaitGroup
}

// NewNotifyHub creates a new hub. users and push may be nil, which disables
// the push fallback.
func NewNotifyHub(users PushTokenLookup, push PushSender) *NotifyHub {
	return &NotifyHub{
		connections: make(map[string]*wsClient),
		users:       users,
		push:        push,
	}
}

// Register registers a new WebSocket connection for a user, replacing and
// closing any previous one
func (h *NotifyHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.conn.Close()
	}
	h.connections[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes conn if it is still the user's current connection
func (h *NotifyHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.connections[userID]; ok && c.conn == conn {
		c.conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *NotifyHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.mu.Unlock()
	if err != nil {
		h.Unregister(userID, c.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *NotifyHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// NotifyRatingReceived tells the rated uploader about a new rating, over
// WebSocket when connected, otherwise by push when a device token is known.
// The push runs in the background and outlives ctx; its failures are logged.
func (h *NotifyHub) NotifyRatingReceived(ctx context.Context, rating *models.Rating) error {
	if h.IsOnline(rating.TargetUserID) {
		err := h.SendToUser(rating.TargetUserID, WSMessage{
			Type:      "rating_received",
			Timestamp: time.Now().UnixMilli(),
			Data: RatingReceivedData{
				Rating:    rating.Value,
				Political: rating.Political,
				VideoURL:  rating.VideoURL,
			},
		})
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Str("user_id", rating.TargetUserID).Msg("WebSocket delivery failed, trying push")
	}

	if h.push == nil || h.users == nil {
		return nil
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	h.pushes.Add(1)
	go func() {
		defer h.pushes.Done()
		defer cancel()
		if err := h.pushRating(pushCtx, rating); err != nil {
			log.Warn().Err(err).Str("user_id", rating.TargetUserID).Msg("Rating push notification failed")
		}
	}()
	return nil
}

// Wait blocks until background push notifications have finished
func (h *NotifyHub) Wait() {
	h.pushes.Wait()
}

func (h *NotifyHub) pushRating(ctx context.Context, rating *models.Rating) error {
	user, err := h.users.GetByID(ctx, rating.TargetUserID)
	if err != nil {
		return fmt.Errorf("failed to look up push token: %w", err)
	}
	if user.PushToken == nil || *user.PushToken == "" {
		return nil
	}

	body := fmt.Sprintf("Someone rated one of your shorts %d/100.", rating.Value)
	if err := h.push.Push(ctx, *user.PushToken, "New rating", body); err != nil {
		return fmt.Errorf("failed to push rating notification: %w", err)
	}
	return nil
}
