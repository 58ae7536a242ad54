package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tothemoon/internal/domain"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, b *Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, b.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readSnapshot(t *testing.T, conn *websocket.Conn) Snapshot {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return snap
}

func TestBroadcastReachesClients(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, b, 1)

	q := domain.PageQuery{Page: 1, PageSize: 50}
	b.Broadcast(NewSnapshot(q, []domain.CoinSummary{{ID: "bitcoin", Name: "Bitcoin"}}, time.Unix(1700000000, 0)))

	snap := readSnapshot(t, conn)
	if snap.Type != "top" || snap.Order != "market_cap_desc" || len(snap.Coins) != 1 || snap.Coins[0].ID != "bitcoin" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestNewClientReceivesLatestSnapshot(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	q := domain.PageQuery{Page: 1, PageSize: 100}
	b.Broadcast(NewSnapshot(q, []domain.CoinSummary{{ID: "ethereum"}}, time.Now()))

	conn := dial(t, srv)
	snap := readSnapshot(t, conn)
	if snap.PageSize != 100 || snap.Coins[0].ID != "ethereum" {
		t.Fatalf("expected replay of latest snapshot, got %+v", snap)
	}
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, b, 1)
	conn.Close()
	waitForClients(t, b, 0)
}
