package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emergingssoftware/faqbot/domain/entities"
	"github.com/emergingssoftware/faqbot/domain/repositories"
)

type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new MongoDB session repository
func NewSessionRepository(db *mongo.Database) repositories.SessionRepository {
	return &SessionRepository{
		collection: db.Collection("sessions"),
	}
}

// Create implements repositories.SessionRepository
func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastActiveAt.IsZero() {
		session.LastActiveAt = now
	}

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetLastByConversationID implements repositories.SessionRepository
func (r *SessionRepository) GetLastByConversationID(ctx context.Context, conversationID string) (*entities.Session, error) {
	if conversationID == "" {
		return nil, errors.New("conversation ID cannot be empty")
	}

	filter := bson.M{"conversation_id": conversationID}
	opts := options.FindOne().SetSort(bson.M{"last_active_at": -1})

	var session entities.Session
	err := r.collection.FindOne(ctx, filter, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No session yet for this conversation
		}
		return nil, fmt.Errorf("failed to get last session for conversation %s: %w", conversationID, err)
	}

	return &session, nil
}

// Update implements repositories.SessionRepository
func (r *SessionRepository) Update(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.ID.IsZero() {
		return errors.New("session ID cannot be empty")
	}

	filter := bson.M{"_id": session.ID}
	update := bson.M{"$set": bson.M{
		"last_active_at":  session.LastActiveAt,
		"last_message_at": session.LastMessageAt,
		"expires_at":      session.ExpiresAt,
		"status":          session.Status,
		"messages":        session.Messages,
		"metadata":        session.Metadata,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("session %s not found", session.ID.Hex())
	}

	return nil
}
