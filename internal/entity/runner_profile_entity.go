package entity

import (
	"time"

	"github.com/google/uuid"
)

// RunnerProfile is the persisted runner profile for a user. Field pointers
// distinguish "not collected yet" from zero values.
type RunnerProfile struct {
	Id                  uuid.UUID
	UserId              uuid.UUID
	Name                *string
	Gender              *string
	BirthYear           *int
	Level               *string
	WeeklySessions      *int
	Current5KTime       *string
	RaceComingUp        *bool
	RaceDistance        *string
	RaceDate            *string
	InjuryNotes         *string
	Language            string
	Agent               string
	ProfileComplete     bool
	ConversationSummary string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
