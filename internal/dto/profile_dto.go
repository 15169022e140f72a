package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,min=3"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// RunnerProfileResponse is the wire shape of the runner profile. Unset
// fields are omitted so the client can tell "missing" from zero.
type RunnerProfileResponse struct {
	Name                *string `json:"name,omitempty"`
	Gender              *string `json:"gender,omitempty"`
	BirthYear           *int    `json:"birthYear,omitempty"`
	Level               *string `json:"level,omitempty"`
	WeeklySessions      *int    `json:"weeklySessions,omitempty"`
	Current5KTime       *string `json:"current5KTime,omitempty"`
	RaceComingUp        *bool   `json:"raceComingUp,omitempty"`
	RaceDistance        *string `json:"raceDistance,omitempty"`
	RaceDate            *string `json:"raceDate,omitempty"`
	InjuryNotes         *string `json:"injuryNotes,omitempty"`
	Language            string  `json:"language"`
	Agent               string  `json:"agent"`
	ProfileComplete     bool    `json:"profileComplete"`
	ConversationSummary string  `json:"conversationSummary,omitempty"`
}

// UpdateRunnerProfileRequest is a sparse patch keyed by profile field name.
// Values are validated and normalized before they touch the profile.
type UpdateRunnerProfileRequest struct {
	Fields map[string]interface{} `json:"fields" validate:"required"`
}
