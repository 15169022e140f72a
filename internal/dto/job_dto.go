package dto

import "github.com/google/uuid"

// SummarizeJobMessage is the queue payload for a background summary update.
// It carries the last message of the triggering batch; the consumer reads
// the current summary itself.
type SummarizeJobMessage struct {
	UserId uuid.UUID `json:"user_id"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
}
