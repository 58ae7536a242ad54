package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"tothemoon/internal/domain"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Snapshot is one frame of the live top-of-market feed.
type Snapshot struct {
	Type      string               `json:"type"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"page_size"`
	Order     string               `json:"order"`
	Coins     []domain.CoinSummary `json:"coins"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NewSnapshot wraps a listing page for broadcast.
func NewSnapshot(q domain.PageQuery, coins []domain.CoinSummary, at time.Time) Snapshot {
	return Snapshot{
		Type:      "top",
		Page:      q.Page,
		PageSize:  q.PageSize,
		Order:     q.Order(),
		Coins:     coins,
		UpdatedAt: at.UTC(),
	}
}

// Broadcaster fans listing snapshots out to WebSocket clients. New clients
// receive the latest snapshot straight away.
type Broadcaster struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	last     []byte
	upgrader websocket.Upgrader
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Broadcast sends snap to every client, dropping those that fail.
func (b *Broadcaster) Broadcast(snap Snapshot) {
	msg, err := json.Marshal(snap)
	if err != nil {
		log.Printf("failed to marshal snapshot: %v", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = msg
	for c := range b.clients {
		if err := write(c, msg); err != nil {
			log.Printf("websocket write error: %v", err)
			_ = c.Close()
			delete(b.clients, c)
		}
	}
}

// Clients reports how many connections are attached.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = c.Close()
		delete(b.clients, c)
	}
}

// ServeHTTP upgrades the request and attaches the connection to the feed.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	b.mu.Lock()
	if b.last != nil {
		if err := write(conn, b.last); err != nil {
			b.mu.Unlock()
			_ = conn.Close()
			return
		}
	}
	b.clients[conn] = struct{}{}
	b.mu.Unlock()

	// the feed is one-way; reading only detects the client going away
	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.clients, conn)
			b.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func write(c *websocket.Conn, msg []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.WriteMessage(websocket.TextMessage, msg)
}
