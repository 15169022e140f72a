package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationMeta struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	Urgency   float64        `gorm:"not null;default:0"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (ConversationMeta) TableName() string {
	return "conversation_meta"
}
