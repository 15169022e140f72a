package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Text     string `json:"text" validate:"required,max=4000"`
	ClientAt int64  `json:"clientAt" validate:"omitempty,gte=0"`
}

type QuickReplyDTO struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type VisualCardDTO struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Bullets     []string        `json:"bullets,omitempty"`
	CTAs        []QuickReplyDTO `json:"ctas,omitempty"`
}

type NextActionDTO struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// SendMessageResponse carries everything the client renders for one turn.
// Dropped is true when the message was discarded by the turn guard; the
// client should neither render a bubble nor retry.
type SendMessageResponse struct {
	Dropped        bool                   `json:"dropped,omitempty"`
	Reply          string                 `json:"reply,omitempty"`
	QuickReplies   []QuickReplyDTO        `json:"quick_replies,omitempty"`
	RoleOptions    []string               `json:"role_options,omitempty"`
	Card           *VisualCardDTO         `json:"card,omitempty"`
	NextAction     *NextActionDTO         `json:"next_action,omitempty"`
	ProfileUpdated bool                   `json:"profile_updated"`
	Profile        map[string]interface{} `json:"profile,omitempty"`
	Onboarding     bool                   `json:"onboarding"`
}

type ChatMessageDTO struct {
	Id       uuid.UUID `json:"id"`
	Sender   string    `json:"sender"`
	Text     string    `json:"text"`
	ClientAt int64     `json:"clientAt"`
	ServerAt time.Time `json:"serverAt"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessageDTO `json:"messages"`
}

type SetAgentRequest struct {
	Agent string `json:"agent" validate:"required,oneof=coach race-planner strategist nutritionist injury-assistant"`
}

type ConversationMetaDTO struct {
	Tags      []string  `json:"tags"`
	Urgency   float64   `json:"urgency"`
	UpdatedAt time.Time `json:"updated_at"`
}
