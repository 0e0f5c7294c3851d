package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dinetrack/order/internal/hub"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

// joinRequest is the handshake frame a client sends after connecting.
// A table client joins its own table topic; a staff client joins the
// shared kitchen topic.
type joinRequest struct {
	Type        string `json:"type"`
	TableNumber int    `json:"tableNumber,omitempty"`
}

// Handler upgrades HTTP requests to websocket connections and bridges
// them to the notification hub.
type Handler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler bound to the hub.
func NewHandler(h *hub.Hub) *Handler {
	return &Handler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients come from the frontend origin; CORS
			// policy is enforced at the HTTP layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP performs the upgrade and runs the connection's pumps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)

		return
	}

	client := h.hub.Register()

	go h.writePump(wsConn, client)
	h.readPump(wsConn, client)
}

// readPump consumes join/leave frames until the client disconnects.
// Disconnect removes every topic membership immediately.
func (h *Handler) readPump(wsConn *websocket.Conn, client *hub.Conn) {
	defer func() {
		h.hub.Remove(client)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Websocket read error", "error", err)
			}

			return
		}

		var req joinRequest
		if err := json.Unmarshal(message, &req); err != nil {
			slog.Debug("Ignoring malformed websocket frame", "error", err)

			continue
		}

		switch req.Type {
		case "joinTable":
			if req.TableNumber > 0 {
				h.hub.Subscribe(client, hub.TableTopic(req.TableNumber))
			}
		case "joinKitchen":
			h.hub.Subscribe(client, hub.KitchenTopic)
		case "leaveTable":
			if req.TableNumber > 0 {
				h.hub.Unsubscribe(client, hub.TableTopic(req.TableNumber))
			}
		case "leaveKitchen":
			h.hub.Unsubscribe(client, hub.KitchenTopic)
		}
	}
}

// writePump pushes hub events to the peer and keeps the connection
// alive with pings. One goroutine per connection; a broken peer only
// ever stalls itself.
func (h *Handler) writePump(wsConn *websocket.Conn, client *hub.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Outbound():
			_ = wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = wsConn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, payload); err != nil {
				slog.Debug("Websocket write error", "error", err)

				return
			}
		case <-client.Closed():
			_ = wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = wsConn.WriteMessage(websocket.CloseMessage, []byte{})

			return
		case <-ticker.C:
			_ = wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
