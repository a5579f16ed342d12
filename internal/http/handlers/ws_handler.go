package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/events"
	"go.uber.org/zap"
)

// WSHub pushes unlock notifications to connected buyers so a paying
// client learns about a confirmed payment immediately instead of waiting
// for its next verify poll. Sockets are keyed by wallet; events arrive
// over the redis payments stream.
type WSHub struct {
	codec       *auth.SessionCodec
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
}

func NewWSHub(codec *auth.SessionCodec, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		codec:       codec,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[string][]*websocket.Conn),
	}
}

func (h *WSHub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, events.StreamPayments, func(event events.Event) {
		wallet, _ := event.Payload["wallet"].(string)
		if wallet == "" {
			return
		}
		h.sendToWallet(wallet, event)
	})
}

func (h *WSHub) sendToWallet(wallet string, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[wallet] {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	// Session token travels in the query: browsers can't set headers on
	// websocket dials.
	claims := h.codec.Verify(conn.Query("token"))
	if claims == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"auth required"}`))
		conn.Close()
		return
	}

	wallet := claims.Wallet

	h.mu.Lock()
	h.connections[wallet] = append(h.connections[wallet], conn)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		conns := h.connections[wallet]
		for i, c := range conns {
			if c == conn {
				h.connections[wallet] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		if len(h.connections[wallet]) == 0 {
			delete(h.connections, wallet)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
