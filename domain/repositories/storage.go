package repositories

import (
	"context"

	"github.com/emergingssoftware/faqbot/domain/entities"
)

// SessionRepository defines data access methods for conversation sessions
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetLastByConversationID(ctx context.Context, conversationID string) (*entities.Session, error)
	Update(ctx context.Context, session *entities.Session) error
}
