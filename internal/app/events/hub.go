package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

// JobEvent is pushed to the owner of a job on every status transition.
type JobEvent struct {
	Type            string    `json:"type"`
	AudioFileID     string    `json:"audio_file_id"`
	Status          string    `json:"status"`
	ErrorReason     string    `json:"error_reason,omitempty"`
	TranscriptionID string    `json:"transcription_id,omitempty"`
	At              time.Time `json:"at"`
}

// Client is one websocket connection of an owner.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans job events out to the connections of each owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger.Named("events"),
	}
}

// Register attaches conn to ownerID and starts its pumps. The returned
// channel is closed when the connection goes away.
func (h *Hub) Register(ownerID string, conn *websocket.Conn) <-chan struct{} {
	client := &Client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if _, ok := h.clients[ownerID]; !ok {
		h.clients[ownerID] = make(map[*Client]struct{})
	}
	h.clients[ownerID][client] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go h.writePump(client)
	go func() {
		defer close(done)
		h.readPump(ownerID, client)
	}()
	return done
}

func (h *Hub) unregister(ownerID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[ownerID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		close(client.send)
		delete(clients, client)
	}
	if len(clients) == 0 {
		delete(h.clients, ownerID)
	}
}

// Publish sends event to every connection of ownerID. Slow clients drop
// messages instead of blocking the publisher.
func (h *Hub) Publish(ownerID string, event JobEvent) {
	if event.Type == "" {
		event.Type = "job.status"
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal job event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[ownerID] {
		select {
		case client.send <- data:
		default:
			h.logger.Debug("dropping job event for slow client", zap.String("owner_id", ownerID))
		}
	}
}

// Connections returns the number of open connections of ownerID.
func (h *Hub) Connections(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerID])
}

func (h *Hub) readPump(ownerID string, client *Client) {
	defer h.unregister(ownerID, client)

	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
