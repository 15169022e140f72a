package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationMeta holds the model's latest topic tags and urgency score for
// a user's conversation. One row per user, upserted on each coaching turn
// that carries directives.
type ConversationMeta struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Tags      []string
	Urgency   float64
	UpdatedAt time.Time
}
