package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dodge-royale/internal/game"
)

const (
	// MaxWSConnectionsTotal caps websocket connections across all IPs.
	MaxWSConnectionsTotal = 100

	// MaxWSConnectionsPerIP caps websocket connections per IP.
	MaxWSConnectionsPerIP = 5
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// MatchController is the slice of the match the session layer drives. The
// match never learns about connections; it only sees session ids.
type MatchController interface {
	AddPlayer(sessionID, displayName string) *game.Player
	RemovePlayer(sessionID string)
	ApplyInput(sessionID string, input game.Input)
	SetName(sessionID, name string)
	RequestRestart(sessionID string)
}

// wsClient tracks one connection with its session id and source IP.
type wsClient struct {
	conn      *websocket.Conn
	sessionID string
	ip        string
}

// WebSocketHub is the session boundary: it owns all connections, assigns a
// session id per connection, feeds decoded client messages into the match,
// and fans the per-tick snapshot out to every client.
type WebSocketHub struct {
	match MatchController

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub bound to a match.
func NewWebSocketHub(match MatchController) *WebSocketHub {
	return &WebSocketHub{
		match:      match,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run processes register/unregister/broadcast events. Start in a goroutine.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.dropClient(conn)

		case message := <-h.broadcast:
			h.mu.RLock()
			var failed []*websocket.Conn
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()

			for _, conn := range failed {
				h.dropClient(conn)
			}
			IncrementWSMessages()
		}
	}
}

// dropClient removes a connection and its player from the match.
func (h *WebSocketHub) dropClient(conn *websocket.Conn) {
	h.mu.Lock()
	client, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	h.wsLimiter.Release(client.ip)
	conn.Close()
	h.match.RemovePlayer(client.sessionID)

	log.Printf("📱 Client disconnected (%d remaining)", count)
	UpdateWSConnections(count)
}

// BroadcastSnapshot ships the per-tick match state to every client. Drops
// the frame when the channel is full (backpressure); the next tick replaces
// it anyway.
func (h *WebSocketHub) BroadcastSnapshot(snap game.MatchSnapshot) {
	h.broadcastEvent("match:state", snap)
}

// BroadcastMatchEvent ships a discrete match event (elimination, phase
// change, winner) so clients don't have to diff consecutive snapshots.
func (h *WebSocketHub) BroadcastMatchEvent(ev game.Event) {
	h.broadcastEvent("match:"+ev.Type.String(), json.RawMessage(ev.Payload))
}

func (h *WebSocketHub) broadcastEvent(event string, data interface{}) {
	jsonBytes, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns hub counters for the stats endpoint.
func (h *WebSocketHub) Stats() map[string]interface{} {
	return map[string]interface{}{
		"wsClients":  h.ClientCount(),
		"wsRejected": h.wsLimiter.Stats()["rejected"],
	}
}

// HandleWebSocket upgrades a connection, joins it to the match as a new
// session, and runs its read loop until disconnect.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", totalConnections)
		RecordConnectionRejected("ws_total_limit")
		writeError(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	// One session id per connection lifetime; a reconnect is a new session.
	sessionID := uuid.NewString()
	player := h.match.AddPlayer(sessionID, r.URL.Query().Get("name"))
	if player == nil {
		RecordConnectionRejected("match_full")
		conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"session:rejected","data":{"reason":"match full"}}`))
		conn.Close()
		h.wsLimiter.Release(ip)
		return
	}

	// Tell the client its identity before any state frame arrives.
	welcome, _ := json.Marshal(map[string]interface{}{
		"event": "session:welcome",
		"data": map[string]interface{}{
			"sessionId": sessionID,
			"name":      player.Name,
			"index":     player.Index,
			"color":     player.Color,
		},
	})
	conn.WriteMessage(websocket.TextMessage, welcome)

	h.register <- &wsClient{conn: conn, sessionID: sessionID, ip: ip}

	go h.readLoop(conn, sessionID)
}

// readLoop decodes inbound messages for one session until the connection
// drops. Unknown message types and garbled payloads are dropped silently;
// they are expected under normal network conditions, not failures.
func (h *WebSocketHub) readLoop(conn *websocket.Conn, sessionID string) {
	defer func() {
		h.unregister <- conn
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg, ok := ParseClientMessage(data)
		if !ok {
			continue
		}

		switch m := msg.(type) {
		case InputCommand:
			h.match.ApplyInput(sessionID, m.Input)
		case NameCommand:
			h.match.SetName(sessionID, m.Name)
		case RestartCommand:
			h.match.RequestRestart(sessionID)
		}
	}
}
