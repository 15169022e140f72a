package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunnerProfile struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Name                *string   `gorm:"type:varchar(50)"`
	Gender              *string   `gorm:"type:varchar(20)"`
	BirthYear           *int
	Level               *string `gorm:"type:varchar(20)"`
	WeeklySessions      *int
	Current5KTime       *string `gorm:"type:varchar(10)"`
	RaceComingUp        *bool
	RaceDistance        *string        `gorm:"type:varchar(20)"`
	RaceDate            *string        `gorm:"type:varchar(10)"`
	InjuryNotes         *string        `gorm:"type:text"`
	Language            string         `gorm:"type:varchar(20);not null;default:'english'"`
	Agent               string         `gorm:"type:varchar(30);not null;default:'coach'"`
	ProfileComplete     bool           `gorm:"default:false"`
	ConversationSummary string         `gorm:"type:text"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (RunnerProfile) TableName() string {
	return "runner_profiles"
}
