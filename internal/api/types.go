package api

import (
	"time"

	"github.com/emergingssoftware/faqbot/domain/entities"
)

// AskRequest is the request payload for the /ask endpoint
type AskRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AskResponse is the response payload for the /ask endpoint
type AskResponse struct {
	Answer string `json:"answer"`
}

// HealthResponse is the response payload for the health check
type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	ProductsLoaded int    `json:"products_loaded"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ConversationCreateResponse is returned when a conversation is opened
type ConversationCreateResponse struct {
	ConversationID string    `json:"conversation_id"`
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ConversationHistoryResponse carries a conversation's recorded messages
type ConversationHistoryResponse struct {
	ConversationID string                    `json:"conversation_id"`
	Messages       []entities.SessionMessage `json:"messages"`
}

// TranscribeRequest is the request payload for server-side transcription
type TranscribeRequest struct {
	AudioData  string `json:"audio_data"` // base64 encoded
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language,omitempty"`
}

// TranscribeResponse carries the recognized transcript
type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

// SynthesizeRequest is the request payload for server-side speech synthesis
type SynthesizeRequest struct {
	Text string `json:"text"`
}
