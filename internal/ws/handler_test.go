package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/HerbHall/printwatch/internal/auth"
	"github.com/HerbHall/printwatch/internal/notify"
)

func testServer(t *testing.T, onConnect func()) (*httptest.Server, *Hub, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService([]byte("ws-test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	hub := NewHub(nil)
	mux := http.NewServeMux()
	NewHandler(hub, tokens, onConnect, nil).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hub, tokens
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandler_RejectsBadToken(t *testing.T) {
	srv, _, _ := testServer(t, nil)

	for _, q := range []string{"", "?token=garbage"} {
		resp, err := http.Get(srv.URL + "/api/v1/ws/alerts" + q)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("query %q: status = %d, want 401", q, resp.StatusCode)
		}
	}
}

func TestHandler_StreamsEvents(t *testing.T) {
	var connects atomic.Int32
	srv, hub, tokens := testServer(t, func() { connects.Add(1) })
	token, _ := tokens.IssueAccessToken("u1", "alice", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/alerts?token=" + token
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	waitFor(t, func() bool { return hub.ClientCount() == 1 })
	if connects.Load() != 1 {
		t.Errorf("onConnect calls = %d, want 1", connects.Load())
	}

	hub.Send(notify.Event{Type: notify.EventPrinterAlert, DeviceID: "p-9", Message: "Printer offline", Status: "offline"})

	var got Message
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.PrinterID != "p-9" || got.Status != "offline" || got.Type != MessagePrinterAlert {
		t.Errorf("got %+v", got)
	}
}

func TestHandler_RebroadcastsClientAlerts(t *testing.T) {
	srv, hub, tokens := testServer(t, nil)
	token, _ := tokens.IssueAccessToken("u1", "alice", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/alerts?token=" + token
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"chat","message":"ignored"}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := wsjson.Write(ctx, conn, Message{Type: MessagePrinterAlert, PrinterID: "p-1", Message: "Paper jam", Status: "warning"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got Message
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Message != "Paper jam" {
		t.Errorf("got %+v, want the rebroadcast alert", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected server to stamp the timestamp")
	}
}
