package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// echoAnswerer replies with a fixed prefix plus the query
type echoAnswerer struct{}

func (echoAnswerer) Answer(_ context.Context, query string) (string, error) {
	return "answer to: " + query, nil
}

func TestNewHub(t *testing.T) {
	hub := NewHub(echoAnswerer{}, nil, zap.NewNop())

	if hub.clients == nil {
		t.Error("Hub clients map not initialized")
	}

	if hub.register == nil {
		t.Error("Hub register channel not initialized")
	}

	if hub.unregister == nil {
		t.Error("Hub unregister channel not initialized")
	}
}

func TestHubReplacedClientSendIsSafe(t *testing.T) {
	hub := NewHub(echoAnswerer{}, nil, zap.NewNop())
	go hub.Run()

	first := newClient(hub, nil, "conv-dup", zap.NewNop())
	second := newClient(hub, nil, "conv-dup", zap.NewNop())

	hub.register <- first
	hub.register <- second
	// A third registration proves the hub finished processing the second
	hub.register <- newClient(hub, nil, "conv-other", zap.NewNop())

	// The replaced client may still be mid-answer; its reply must be
	// dropped, not panic on the closed channel.
	first.sendJSON(NewAnswerMessage("late answer"))

	if hub.ClientCount() != 2 {
		t.Errorf("Expected 2 clients after replacement, got %d", hub.ClientCount())
	}
}

func TestHubReplacedClientContextCancelled(t *testing.T) {
	hub := NewHub(echoAnswerer{}, nil, zap.NewNop())
	go hub.Run()

	first := newClient(hub, nil, "conv-dup", zap.NewNop())
	second := newClient(hub, nil, "conv-dup", zap.NewNop())

	hub.register <- first
	hub.register <- second
	hub.register <- newClient(hub, nil, "conv-other", zap.NewNop())

	select {
	case <-first.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("Expected the replaced client's context to be cancelled")
	}

	select {
	case <-second.ctx.Done():
		t.Fatal("The replacing client's context must stay live")
	default:
	}
}

func TestHubAskRoundTrip(t *testing.T) {
	hub := NewHub(echoAnswerer{}, nil, zap.NewNop())
	go hub.Run()

	e := echo.New()
	server := httptest.NewServer(e)
	defer server.Close()

	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(hub, c, "conv-test", zap.NewNop())
	})

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "ask", "query": "track my order"}); err != nil {
		t.Fatalf("Failed to send ask message: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read answer: %v", err)
	}

	var answer AnswerMessage
	if err := json.Unmarshal(data, &answer); err != nil {
		t.Fatalf("Failed to decode answer: %v", err)
	}

	if answer.Type != MessageTypeAnswer {
		t.Errorf("Expected answer message, got %s", answer.Type)
	}

	if answer.Answer != "answer to: track my order" {
		t.Errorf("Unexpected answer: %q", answer.Answer)
	}
}

func TestHubRejectsInvalidMessage(t *testing.T) {
	hub := NewHub(echoAnswerer{}, nil, zap.NewNop())
	go hub.Run()

	e := echo.New()
	server := httptest.NewServer(e)
	defer server.Close()

	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(hub, c, "conv-test", zap.NewNop())
	})

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "bogus"}); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read error: %v", err)
	}

	var errMsg ErrorMessage
	if err := json.Unmarshal(data, &errMsg); err != nil {
		t.Fatalf("Failed to decode error message: %v", err)
	}

	if errMsg.Type != MessageTypeError {
		t.Errorf("Expected error message, got %s", errMsg.Type)
	}

	if errMsg.Code != "invalid_message" {
		t.Errorf("Expected code invalid_message, got %s", errMsg.Code)
	}
}
