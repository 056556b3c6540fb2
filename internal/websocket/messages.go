package websocket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeAsk    MessageType = "ask"
	MessageTypeAnswer MessageType = "answer"
	MessageTypePing   MessageType = "ping"
	MessageTypePong   MessageType = "pong"
	MessageTypeError  MessageType = "error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
}

// AskMessage carries a user query to the server
type AskMessage struct {
	BaseMessage
	Query string `json:"query"`
}

// AnswerMessage carries the bot's reply
type AnswerMessage struct {
	BaseMessage
	Answer string `json:"answer"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// PingMessage is a connection health probe
type PingMessage struct {
	BaseMessage
}

// ParseAskMessage decodes an incoming client message. Only ask and ping
// messages are accepted from clients.
func ParseAskMessage(data []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid message JSON: %w", err)
	}

	switch base.Type {
	case MessageTypeAsk:
		var msg AskMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid ask message: %w", err)
		}
		if strings.TrimSpace(msg.Query) == "" {
			return nil, fmt.Errorf("ask message requires a query")
		}
		return &msg, nil
	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil
	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// NewAnswerMessage builds an answer message with the current timestamp
func NewAnswerMessage(answer string) *AnswerMessage {
	return &AnswerMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeAnswer,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Answer: answer,
	}
}

// NewErrorMessage builds an error message with the current timestamp
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
	}
}
