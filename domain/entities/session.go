package entities

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus represents the status of a session
type SessionStatus string

const (
	SessionStatusActive     SessionStatus = "active"
	SessionStatusExpired    SessionStatus = "expired"
	SessionStatusTerminated SessionStatus = "terminated"
)

// MessageRole represents the role of a message sender
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// SessionMessage represents a message within a session
type SessionMessage struct {
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
	Role      MessageRole `json:"role" bson:"role"`
	Content   string      `json:"content" bson:"content"`
}

// SessionMetadata contains session-level metadata
type SessionMetadata struct {
	Language string `json:"language" bson:"language"`
	// Source records how the query reached the server: "typed", "voice" or "ws"
	Source string `json:"source,omitempty" bson:"source,omitempty"`
}

// Session represents one conversation between a browser client and the bot
type Session struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID string             `json:"conversation_id" bson:"conversation_id"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	LastActiveAt   time.Time          `json:"last_active_at" bson:"last_active_at"`
	LastMessageAt  *time.Time         `json:"last_message_at" bson:"last_message_at"`
	ExpiresAt      time.Time          `json:"expires_at" bson:"expires_at"`
	Status         SessionStatus      `json:"status" bson:"status"`
	Messages       []SessionMessage   `json:"messages" bson:"messages"`
	Metadata       SessionMetadata    `json:"metadata" bson:"metadata"`
}

// NewSession creates a new session for a conversation
func NewSession(conversationID string) *Session {
	now := time.Now()
	return &Session{
		ID:             primitive.NewObjectID(),
		ConversationID: conversationID,
		CreatedAt:      now,
		LastActiveAt:   now,
		ExpiresAt:      now.Add(24 * time.Hour),
		Status:         SessionStatusActive,
		Messages:       make([]SessionMessage, 0),
		Metadata: SessionMetadata{
			Language: "en-US",
		},
	}
}

// AddMessage appends a message to the session
func (s *Session) AddMessage(role MessageRole, content string) {
	now := time.Now()
	s.Messages = append(s.Messages, SessionMessage{
		Timestamp: now,
		Role:      role,
		Content:   content,
	})
	s.LastMessageAt = &now
	s.UpdateLastActive()
}

// UpdateLastActive updates the last active timestamp and extends expiration
func (s *Session) UpdateLastActive() {
	s.LastActiveAt = time.Now()
	s.ExpiresAt = s.LastActiveAt.Add(24 * time.Hour)
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt) || s.Status != SessionStatusActive
}

// ShouldCreateNewSession reports whether a fresh session should replace this
// one. A conversation idle for more than 30 minutes starts a new session.
func (s *Session) ShouldCreateNewSession() bool {
	if s.LastMessageAt == nil {
		return false
	}
	return time.Since(*s.LastMessageAt) > 30*time.Minute
}

// Terminate marks the session as terminated
func (s *Session) Terminate() {
	s.Status = SessionStatusTerminated
	s.UpdateLastActive()
}

// Validate validates the session data
func (s *Session) Validate() error {
	if s.ConversationID == "" {
		return errors.New("conversation_id is required")
	}
	if s.Status != SessionStatusActive && s.Status != SessionStatusExpired && s.Status != SessionStatusTerminated {
		return errors.New("invalid session status")
	}
	return nil
}
