package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PROFILE_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Well-known event type codes emitted by the chat pipeline.
const (
	TypeProfileCompleted     = "PROFILE_COMPLETED"
	TypeConversationAnalyzed = "CONVERSATION_ANALYZED"
	TypeAgentSwitched        = "AGENT_SWITCHED"
)

// NewProfileCompletedEvent is emitted when a runner finishes onboarding.
func NewProfileCompletedEvent(userID string) Event {
	return BaseEvent{
		Type: TypeProfileCompleted,
		Data: map[string]interface{}{
			"user_id": userID,
		},
		OccurredAt: time.Now(),
	}
}

// NewConversationAnalyzedEvent carries the model's topic tags and urgency
// score for a conversation turn.
func NewConversationAnalyzedEvent(userID string, tags []string, urgency float64) Event {
	return BaseEvent{
		Type: TypeConversationAnalyzed,
		Data: map[string]interface{}{
			"user_id": userID,
			"tags":    tags,
			"urgency": urgency,
		},
		OccurredAt: time.Now(),
	}
}

// NewAgentSwitchedEvent records that a user moved to a different coach role.
func NewAgentSwitchedEvent(userID, agent string) Event {
	return BaseEvent{
		Type: TypeAgentSwitched,
		Data: map[string]interface{}{
			"user_id": userID,
			"agent":   agent,
		},
		OccurredAt: time.Now(),
	}
}
