package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sectorclash/internal/game"
	"sectorclash/internal/game/nav"
)

const (
	// MaxWSConnectionsTotal caps all WebSocket connections.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP caps connections per source IP.
	MaxWSConnectionsPerIP = 10

	// broadcastInterval is the snapshot fanout cadence, decoupled from
	// the simulation tick rate.
	broadcastInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Native participant clients send no Origin header.
		if origin == "" || IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a connection, its source IP, and the participant it
// has claimed (empty until a successful claim).
type wsClient struct {
	conn          *websocket.Conn
	ip            string
	participantID string
}

// clientMessage is the inbound wire format. type is "claim" (bind this
// connection to a roster participant) or "input" (steer).
type clientMessage struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	Credential    string `json:"credential"`
	Dir           string `json:"dir"`
	Ability       bool   `json:"ability"`
}

// MatchEngine is the engine surface the hub needs. Snapshot drains the
// delta log, making the hub the canonical event consumer.
type MatchEngine interface {
	Snapshot() game.Snapshot
	SubmitInput(id string, in game.Input)
	SetConnected(id string, connected bool)
	Authenticate(id, credential string) bool
}

// WebSocketHub manages connections and fans out match snapshots.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	engine    MatchEngine
	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub bound to one match engine.
func NewWebSocketHub(engine MatchEngine) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		engine:     engine,
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run processes registration and broadcast traffic. Call once, in its
// own goroutine.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("📱 Observer connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				if client.participantID != "" {
					h.engine.SetConnected(client.participantID, false)
				}
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("📱 Observer disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			var dead []*websocket.Conn
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					dead = append(dead, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range dead {
				h.dropClient(conn)
			}
			IncrementWSMessages()
		}
	}
}

func (h *WebSocketHub) dropClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[conn]; ok {
		h.wsLimiter.Release(client.ip)
		if client.participantID != "" {
			h.engine.SetConnected(client.participantID, false)
		}
		delete(h.clients, conn)
		conn.Close()
	}
}

// Broadcast queues a message for all clients; drops under
// backpressure rather than stalling the caller.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}
	jsonBytes, err := json.Marshal(msg)
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

// StartBroadcastLoop fans out drained snapshots on a fixed cadence.
// Snapshots are drained even with zero clients so the delta log never
// grows without bound.
func (h *WebSocketHub) StartBroadcastLoop() {
	go func() {
		ticker := time.NewTicker(broadcastInterval)
		defer ticker.Stop()

		for range ticker.C {
			snap := h.engine.Snapshot()
			down := 0
			for _, p := range snap.Participants {
				if p.State == "down" {
					down++
				}
			}
			RecordMatchState(snap.Progress, len(snap.Adversaries), down, len(snap.Events))

			if h.ClientCount() > 0 {
				h.Broadcast("match:state", snap)
			}
			if snap.Terminated {
				return
			}
		}
	}()
}

// HandleWebSocket upgrades a connection and runs its read loop.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	h.mu.RLock()
	total := len(h.clients)
	h.mu.RUnlock()
	if total >= MaxWSConnectionsTotal {
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	h.register <- client

	go h.readLoop(client)
}

// readLoop handles claim and input messages until the connection
// drops. An unclaimed connection is a pure observer.
func (h *WebSocketHub) readLoop(client *wsClient) {
	defer func() {
		h.unregister <- client.conn
	}()

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "claim":
			if !h.engine.Authenticate(msg.ParticipantID, msg.Credential) {
				client.conn.WriteMessage(websocket.TextMessage,
					[]byte(`{"event":"claim:rejected"}`))
				continue
			}
			client.participantID = msg.ParticipantID
			h.engine.SetConnected(msg.ParticipantID, true)
			client.conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"event":"claim:ok"}`))

		case "input":
			if client.participantID == "" {
				continue
			}
			h.engine.SubmitInput(client.participantID, game.Input{
				Dir:     nav.ParseDir(msg.Dir),
				Ability: msg.Ability,
			})
		}
	}
}
