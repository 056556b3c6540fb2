package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/emergingssoftware/faqbot/domain/repositories"
	"github.com/emergingssoftware/faqbot/internal/auth"
	"github.com/emergingssoftware/faqbot/internal/websocket"
	"github.com/emergingssoftware/faqbot/usecase"
	"github.com/emergingssoftware/faqbot/web"
)

const (
	emptyQueryAnswer    = "Please type a question to get started!"
	internalErrorAnswer = "Sorry, I encountered an error processing your request. Please try again or contact us directly at director@emergingssoftware.com"
)

// Answerer produces a reply for a user query
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Deps bundles everything the route handlers need. STT and TTS may be nil
// when the corresponding provider is not configured; their endpoints then
// report the capability as unavailable.
type Deps struct {
	Answerer      Answerer
	Conversations *usecase.ConversationService
	STT           repositories.SpeechToText
	TTS           repositories.TextToSpeech
	Hub           *websocket.Hub
	ProductCount  int
	Logger        *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Deps) {
	// Static chat frontend
	e.FileFS("/", "static/index.html", web.Assets)
	e.StaticFS("/static", echo.MustSubFS(web.Assets, "static"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:         "healthy",
			Timestamp:      time.Now().Format(time.RFC3339),
			ProductsLoaded: deps.ProductCount,
		})
	})

	e.POST("/ask", func(c echo.Context) error {
		return ask(c, deps)
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/conversations", func(c echo.Context) error {
		return createConversation(c, deps.Logger)
	})
	v1.GET("/conversations/:id", func(c echo.Context) error {
		return getConversation(c, deps)
	})

	v1.POST("/voice/transcribe", func(c echo.Context) error {
		return transcribe(c, deps)
	})
	v1.POST("/voice/synthesize", func(c echo.Context) error {
		return synthesize(c, deps)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(c, deps)
	})
}

// ask answers a single user query
func ask(c echo.Context, deps Deps) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		deps.Logger.Error("Failed to bind ask request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return c.JSON(http.StatusBadRequest, AskResponse{Answer: emptyQueryAnswer})
	}

	answer, err := deps.Answerer.Answer(c.Request().Context(), query)
	if err != nil {
		deps.Logger.Error("Failed to answer query",
			zap.String("query_preview", preview(query)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, AskResponse{Answer: internalErrorAnswer})
	}

	if conversationID := conversationFromToken(c); conversationID != "" && deps.Conversations != nil {
		deps.Conversations.Record(c.Request().Context(), conversationID, query, answer, "typed")
	}

	return c.JSON(http.StatusOK, AskResponse{Answer: answer})
}

// createConversation issues a conversation ID and its bearer token
func createConversation(c echo.Context, logger *zap.Logger) error {
	conversationID := uuid.NewString()

	token, err := auth.GenerateConversationToken(conversationID)
	if err != nil {
		logger.Error("Failed to generate conversation token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate conversation token",
		})
	}

	return c.JSON(http.StatusOK, ConversationCreateResponse{
		ConversationID: conversationID,
		Token:          token,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	})
}

// getConversation returns the recorded history for a conversation
func getConversation(c echo.Context, deps Deps) error {
	conversationID := conversationFromToken(c)
	if conversationID == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "A conversation token is required",
		})
	}

	if conversationID != c.Param("id") {
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Token does not match this conversation",
		})
	}

	if deps.Conversations == nil || !deps.Conversations.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "history_unavailable",
			Message: "Conversation history is not configured on this server",
		})
	}

	session, err := deps.Conversations.History(c.Request().Context(), conversationID)
	if err != nil {
		deps.Logger.Error("Failed to load conversation history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load conversation history",
		})
	}

	if session == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "No history recorded for this conversation",
		})
	}

	return c.JSON(http.StatusOK, ConversationHistoryResponse{
		ConversationID: conversationID,
		Messages:       session.Messages,
	})
}

// transcribe converts posted audio to text, for browsers without a
// speech-recognition capability
func transcribe(c echo.Context, deps Deps) error {
	if deps.STT == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "speech_unavailable",
			Message: "Speech recognition is not configured on this server",
		})
	}

	var req TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	audioData, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil || len(audioData) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "Audio data must be non-empty base64",
		})
	}

	transcript, err := deps.STT.TranscribeAudio(c.Request().Context(), audioData, repositories.AudioConfig{
		SampleRate: req.SampleRate,
		Encoding:   req.Encoding,
		Language:   req.Language,
	})
	if err != nil {
		deps.Logger.Error("Transcription failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "transcription_failed",
			Message: "Failed to transcribe audio",
		})
	}

	return c.JSON(http.StatusOK, TranscribeResponse{Transcript: transcript})
}

// synthesize streams spoken audio for the given text, for browsers
// without a speech-synthesis capability
func synthesize(c echo.Context, deps Deps) error {
	if deps.TTS == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "synthesis_unavailable",
			Message: "Speech synthesis is not configured on this server",
		})
	}

	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_text",
			Message: "Text is required",
		})
	}

	audioChan, err := deps.TTS.ConvertTextToSpeech(c.Request().Context(), req.Text)
	if err != nil {
		deps.Logger.Error("Synthesis failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "synthesis_failed",
			Message: "Failed to synthesize speech",
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "audio/mpeg")
	c.Response().WriteHeader(http.StatusOK)

	for chunk := range audioChan {
		if _, err := c.Response().Write(chunk); err != nil {
			return err
		}
		c.Response().Flush()
	}

	return nil
}

// websocketWithAuth validates the conversation token and hands the
// connection to the hub
func websocketWithAuth(c echo.Context, deps Deps) error {
	token := bearerToken(c)
	if token == "" {
		// Browsers cannot set headers on WebSocket requests
		token = c.QueryParam("token")
	}

	if token == "" {
		deps.Logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "A conversation token is required",
		})
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		deps.Logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired conversation token",
		})
	}

	if claims.Role != auth.RoleConversation || claims.ConversationID == "" {
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "invalid_token_claims",
			Message: "Conversation ID not found in token",
		})
	}

	deps.Logger.Info("WebSocket connection authenticated",
		zap.String("conversation_id", claims.ConversationID))

	return websocket.HandleWebSocket(deps.Hub, c, claims.ConversationID, deps.Logger)
}

// conversationFromToken extracts a valid conversation ID from the
// Authorization header, or "" when absent or invalid
func conversationFromToken(c echo.Context) string {
	token := bearerToken(c)
	if token == "" {
		return ""
	}

	claims, err := auth.ValidateToken(token)
	if err != nil || claims.Role != auth.RoleConversation {
		return ""
	}

	return claims.ConversationID
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return s
}
