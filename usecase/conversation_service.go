package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/emergingssoftware/faqbot/domain/entities"
	"github.com/emergingssoftware/faqbot/domain/repositories"
)

// ConversationService persists conversation history. Persistence never
// blocks answering: storage errors are logged and swallowed, and a nil
// repository disables recording entirely.
type ConversationService struct {
	sessions repositories.SessionRepository
	logger   *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(sessions repositories.SessionRepository, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		sessions: sessions,
		logger:   logger,
	}
}

// Enabled reports whether conversation persistence is configured
func (s *ConversationService) Enabled() bool {
	return s.sessions != nil
}

// Record appends a query/answer exchange to the conversation's session.
// A conversation idle for more than 30 minutes gets a fresh session.
func (s *ConversationService) Record(ctx context.Context, conversationID, query, answer, source string) {
	if !s.Enabled() || conversationID == "" {
		return
	}

	session, err := s.sessions.GetLastByConversationID(ctx, conversationID)
	if err != nil {
		s.logger.Error("Failed to load session",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return
	}

	fresh := session == nil || session.IsExpired() || session.ShouldCreateNewSession()
	if fresh {
		session = entities.NewSession(conversationID)
	}
	session.Metadata.Source = source
	session.AddMessage(entities.MessageRoleUser, query)
	session.AddMessage(entities.MessageRoleAssistant, answer)

	if fresh {
		err = s.sessions.Create(ctx, session)
	} else {
		err = s.sessions.Update(ctx, session)
	}
	if err != nil {
		s.logger.Error("Failed to persist session",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return
	}

	s.logger.Info("Exchange recorded",
		zap.String("conversation_id", conversationID),
		zap.Int("messages", len(session.Messages)))
}

// History returns the latest session for a conversation, or nil when the
// conversation has no recorded history.
func (s *ConversationService) History(ctx context.Context, conversationID string) (*entities.Session, error) {
	if !s.Enabled() {
		return nil, nil
	}
	return s.sessions.GetLastByConversationID(ctx, conversationID)
}
