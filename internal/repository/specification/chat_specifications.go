package specification

import (
	"gorm.io/gorm"
)

// MessageOrder sorts the conversation log by server time with the client
// timestamp as tiebreaker, the canonical transcript order.
type MessageOrder struct {
	Desc bool
}

func (s MessageOrder) Apply(db *gorm.DB) *gorm.DB {
	if s.Desc {
		return db.Order("server_at DESC, client_at DESC")
	}
	return db.Order("server_at ASC, client_at ASC")
}

// BySender filters messages by who sent them ("user" or "bot").
type BySender struct {
	Sender string
}

func (s BySender) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender = ?", s.Sender)
}
