package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageSender string

const (
	SenderUser MessageSender = "user"
	SenderBot  MessageSender = "bot"
)

// ChatMessage is one line of the per-user conversation log. ClientAt is the
// client's millisecond timestamp and is only a tiebreaker: ServerAt is the
// authoritative ordering key.
type ChatMessage struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Sender    MessageSender
	Text      string
	ClientAt  int64
	ServerAt  time.Time
	CreatedAt time.Time
}
