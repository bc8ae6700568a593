package scenariod

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

func dialBroadcaster(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	return conn
}

func TestBroadcasterPublish(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(http.HandlerFunc(b.HandleWS))
	defer srv.Close()

	conn := dialBroadcaster(t, srv)
	defer conn.Close()

	waitForClients(t, b, 1)

	sent := RunEvent{
		RunID:         "run-1",
		Status:        models.RunStatusCompleted,
		Backend:       "parallel",
		ScenarioCount: 100,
		Timestamp:     time.Now().UTC().UnixMilli(),
	}
	b.Publish(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got RunEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.RunID != sent.RunID {
		t.Fatalf("expected run_id %s, got %s", sent.RunID, got.RunID)
	}
	if got.Status != sent.Status {
		t.Fatalf("expected status %s, got %s", sent.Status, got.Status)
	}
	if got.ScenarioCount != sent.ScenarioCount {
		t.Fatalf("expected scenario count %d, got %d", sent.ScenarioCount, got.ScenarioCount)
	}
}

func TestBroadcasterMultipleClients(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(http.HandlerFunc(b.HandleWS))
	defer srv.Close()

	conn1 := dialBroadcaster(t, srv)
	defer conn1.Close()
	conn2 := dialBroadcaster(t, srv)
	defer conn2.Close()

	waitForClients(t, b, 2)

	b.Publish(RunEvent{RunID: "run-1", Status: models.RunStatusRunning})

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got RunEvent
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("client %d read failed: %v", i, err)
		}
		if got.RunID != "run-1" {
			t.Fatalf("client %d got run_id %s", i, got.RunID)
		}
	}
}

func TestBroadcasterDisconnectEvicts(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(http.HandlerFunc(b.HandleWS))
	defer srv.Close()

	conn := dialBroadcaster(t, srv)
	waitForClients(t, b, 1)

	conn.Close()
	waitForClients(t, b, 0)
}

func TestBroadcasterPublishNoClients(t *testing.T) {
	b := NewBroadcaster()
	// Publishing into an empty client set must not panic or block.
	b.Publish(RunEvent{RunID: "run-1", Status: models.RunStatusFailed})
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", b.ClientCount())
	}
}

func waitForClients(t *testing.T, b *Broadcaster, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", want, b.ClientCount())
}
