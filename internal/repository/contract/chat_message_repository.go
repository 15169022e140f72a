package contract

import (
	"context"

	"run-coach-be/internal/entity"
	"run-coach-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindRecentByUserId returns the newest limit messages for a user,
	// oldest first, ordered by server time with client time as tiebreaker.
	FindRecentByUserId(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.ChatMessage, error)
}
