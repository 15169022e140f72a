package contract

import (
	"context"

	"run-coach-be/internal/entity"

	"github.com/google/uuid"
)

type ConversationMetaRepository interface {
	// Upsert keeps one meta row per user, replacing tags and urgency.
	Upsert(ctx context.Context, meta *entity.ConversationMeta) error
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.ConversationMeta, error)
}
