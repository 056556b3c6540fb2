package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The HTTP API is CORS-open; the socket follows suit
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Answerer produces a reply for a user query
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Recorder persists a query/answer exchange
type Recorder interface {
	Record(ctx context.Context, conversationID, query, answer, source string)
}

// Hub maintains the set of active clients, one per conversation
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	answerer Answerer
	recorder Recorder
	logger   *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(answerer Answerer, recorder Recorder, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		answerer:   answerer,
		recorder:   recorder,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if existing, ok := h.clients[client.conversationID]; ok {
				existing.closeSend()
			}
			h.clients[client.conversationID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("conversation_id", client.conversationID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.conversationID]; ok && current == client {
				delete(h.clients, client.conversationID)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("conversation_id", client.conversationID))
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	conversationID string
	logger         *zap.Logger

	// ctx is cancelled when the client leaves the hub, by disconnect or
	// by being replaced; in-flight answer calls observe it.
	ctx    context.Context
	cancel context.CancelFunc

	// sendMu guards send against closeSend racing an in-flight reply
	sendMu sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, conversationID string, logger *zap.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:            hub,
		conn:           conn,
		send:           make(chan []byte, 16),
		conversationID: conversationID,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// closeSend marks the client gone and closes its send channel exactly
// once. Safe to call while the client's read pump is still answering.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.send)
}

// HandleWebSocket upgrades the connection and starts the client pumps
func HandleWebSocket(hub *Hub, c echo.Context, conversationID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := newClient(hub, conn, conversationID, logger)

	hub.register <- client

	go client.writePump()
	go client.readPump()

	return nil
}

// readPump reads client messages and dispatches queries to the answerer
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Unexpected close", zap.Error(err))
			}
			return
		}

		msg, err := ParseAskMessage(data)
		if err != nil {
			c.logger.Warn("Rejected client message", zap.Error(err))
			c.sendJSON(NewErrorMessage("invalid_message", err.Error()))
			continue
		}

		switch m := msg.(type) {
		case *AskMessage:
			c.handleAsk(m)
		case *PingMessage:
			c.sendJSON(&BaseMessage{Type: MessageTypePong, Timestamp: time.Now().Format(time.RFC3339)})
		}
	}
}

func (c *Client) handleAsk(msg *AskMessage) {
	ctx := c.ctx

	answer, err := c.hub.answerer.Answer(ctx, msg.Query)
	if err != nil {
		c.logger.Error("Failed to answer query", zap.Error(err))
		c.sendJSON(NewErrorMessage("answer_failed", "Sorry, I encountered an error processing your request."))
		return
	}

	if c.hub.recorder != nil {
		c.hub.recorder.Record(ctx, c.conversationID, msg.Query, answer, "ws")
	}

	c.sendJSON(NewAnswerMessage(answer))
}

func (c *Client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("Send buffer full, dropping message",
			zap.String("conversation_id", c.conversationID))
	}
}

// writePump forwards queued messages to the connection and keeps it alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
