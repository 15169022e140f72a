package websocket

import (
	"run-coach-be/pkg/coach/presentation"
	"run-coach-be/pkg/coach/prompt"

	"github.com/google/uuid"
)

// Chat event types pushed to clients.
const (
	EventUserBubble   = "user_bubble"
	EventBotBubble    = "bot_bubble"
	EventThinking     = "thinking"
	EventThinkingDone = "thinking_done"
	EventChoices      = "choices"
	EventCard         = "card"
	EventExpandedMode = "expanded_mode"
	EventTyping       = "typing"
)

// Presenter renders conversation output by pushing hub events. It is the
// websocket implementation of the presentation port.
type Presenter struct {
	hub *Hub
}

var _ presentation.Port = (*Presenter)(nil)

func NewPresenter(hub *Hub) *Presenter {
	return &Presenter{hub: hub}
}

func (p *Presenter) ShowUserBubble(userID uuid.UUID, text string) {
	p.hub.SendEvent(userID, EventUserBubble, map[string]string{"text": text})
}

func (p *Presenter) ShowBotBubble(userID uuid.UUID, text string) {
	p.hub.SendEvent(userID, EventBotBubble, map[string]string{"text": text})
}

func (p *Presenter) ShowThinking(userID uuid.UUID) presentation.Handle {
	p.hub.SendEvent(userID, EventThinking, nil)
	return thinkingHandle{hub: p.hub, userID: userID}
}

func (p *Presenter) ShowChoices(userID uuid.UUID, choices []prompt.QuickReply) {
	p.hub.SendEvent(userID, EventChoices, choices)
}

func (p *Presenter) ShowCard(userID uuid.UUID, card prompt.VisualCard) {
	p.hub.SendEvent(userID, EventCard, card)
}

func (p *Presenter) SetExpandedMode(userID uuid.UUID, expanded bool) {
	p.hub.SendEvent(userID, EventExpandedMode, map[string]bool{"expanded": expanded})
}

func (p *Presenter) Typing(userID uuid.UUID, text string) {
	p.hub.SendEvent(userID, EventTyping, map[string]string{"text": text})
}

type thinkingHandle struct {
	hub    *Hub
	userID uuid.UUID
}

func (h thinkingHandle) Remove() {
	h.hub.SendEvent(h.userID, EventThinkingDone, nil)
}
