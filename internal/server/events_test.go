package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/contentful-constructor-go/internal/app"
	"go.uber.org/zap"
)

func dialHub(t *testing.T, hub *EventHub) *websocket.Conn {
	t.Helper()

	joined := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Join(ws)
		close(joined)
	}))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	<-joined
	return client
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	hub := NewEventHub(zap.NewNop())
	client := dialHub(t, hub)

	hub.Publish(app.ProgressEvent{Type: "run_started", ContentType: "techTip"})

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(payload), `"run_started"`) {
		t.Errorf("payload = %s", payload)
	}
	if hub.Count() != 1 {
		t.Errorf("subscriber count = %d, want 1", hub.Count())
	}
}

func TestPublishEvictsDeadSubscriber(t *testing.T) {
	hub := NewEventHub(zap.NewNop())
	client := dialHub(t, hub)
	_ = client.Close()

	// The first write after the peer drops may still land in the kernel
	// buffer; keep publishing until the hub notices the dead connection.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() > 0 && time.Now().Before(deadline) {
		hub.Publish(app.ProgressEvent{Type: "upload_started"})
		time.Sleep(10 * time.Millisecond)
	}

	if hub.Count() != 0 {
		t.Errorf("dead subscriber still registered after eviction window")
	}
}
