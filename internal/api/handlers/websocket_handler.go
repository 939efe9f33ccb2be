package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	ws "github.com/raterly/raterly-be/internal/websocket"
)

// WebSocketHandler upgrades HTTP connections to live feed subscriptions.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the router; the feed carries only
		// public events.
		return true
	},
}

// Serve handles the WebSocket connection request. Both /ws (global feed) and
// /ws/users/{username} (single profile) land here.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	topic := chi.URLParam(r, "username")
	if topic == "" {
		topic = "global"
	}

	client := ws.NewClient(h.hub, conn, topic)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump(nil)
}
