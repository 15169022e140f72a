// Package presentation defines the render-instruction sink the orchestrator
// pushes to. The core never renders anything itself; an adapter (the
// websocket hub in this service, a terminal in the simulator) receives the
// instructions and owns the actual presentation.
package presentation

import (
	"github.com/google/uuid"

	"run-coach-be/pkg/coach/prompt"
)

// Handle removes a transient indicator that was previously shown.
type Handle interface {
	Remove()
}

// Port is the one-way render channel. Implementations must be non-blocking:
// a slow or absent client must never stall the conversation turn.
type Port interface {
	ShowUserBubble(userID uuid.UUID, text string)
	ShowBotBubble(userID uuid.UUID, text string)
	ShowThinking(userID uuid.UUID) Handle
	ShowChoices(userID uuid.UUID, choices []prompt.QuickReply)
	ShowCard(userID uuid.UUID, card prompt.VisualCard)
	SetExpandedMode(userID uuid.UUID, expanded bool)

	// Typing pushes one progressive-reveal fragment of a bot reply.
	Typing(userID uuid.UUID, fragment string)
}

// NopPort discards every instruction. Used when no client is connected and
// by tests that only care about orchestrator state.
type NopPort struct{}

func (NopPort) ShowUserBubble(uuid.UUID, string) {}

func (NopPort) ShowBotBubble(uuid.UUID, string) {}

func (NopPort) ShowThinking(uuid.UUID) Handle { return nopHandle{} }

func (NopPort) ShowChoices(uuid.UUID, []prompt.QuickReply) {}

func (NopPort) ShowCard(uuid.UUID, prompt.VisualCard) {}

func (NopPort) SetExpandedMode(uuid.UUID, bool) {}

func (NopPort) Typing(uuid.UUID, string) {}

type nopHandle struct{}

func (nopHandle) Remove() {}
