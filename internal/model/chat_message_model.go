package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_messages_user_order,priority:1"`
	Sender    string    `gorm:"type:varchar(10);not null"`
	Text      string    `gorm:"type:text;not null"`
	ClientAt  int64     `gorm:"not null;default:0"`
	ServerAt  time.Time `gorm:"not null;index:idx_chat_messages_user_order,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
