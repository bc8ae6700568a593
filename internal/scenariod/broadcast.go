package scenariod

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/GoSim-25-26J-441/scenario-engine/pkg/logger"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RunEvent is the JSON payload pushed to connected clients on every run
// status transition.
type RunEvent struct {
	RunID         string           `json:"run_id"`
	Status        models.RunStatus `json:"status"`
	Backend       string           `json:"backend,omitempty"`
	ScenarioCount int              `json:"scenario_count,omitempty"`
	Error         string           `json:"error,omitempty"`
	Timestamp     int64            `json:"timestamp"`
}

// Broadcaster pushes run status events to connected dashboard clients over
// WebSocket.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWS is the WebSocket upgrade handler.
func (b *Broadcaster) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	b.mu.Lock()
	b.clients[conn] = true
	count := len(b.clients)
	b.mu.Unlock()

	logger.Info("dashboard client connected", "clients", count)

	// Read loop detects disconnects; clients are not expected to send
	// anything meaningful.
	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.clients, conn)
			remaining := len(b.clients)
			b.mu.Unlock()
			conn.Close()
			logger.Info("dashboard client disconnected", "clients", remaining)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish sends the event to every connected client. Failed writes evict the
// client; a slow dashboard must not stall run execution.
func (b *Broadcaster) Publish(event RunEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for conn := range b.clients {
		if err := conn.WriteJSON(event); err != nil {
			logger.Warn("dropping websocket client", "error", err)
			conn.Close()
			delete(b.clients, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
