package mapper

import (
	"run-coach-be/internal/entity"
	"run-coach-be/internal/model"
	"run-coach-be/pkg/coach/profile"
)

type ProfileMapper struct{}

func NewProfileMapper() *ProfileMapper {
	return &ProfileMapper{}
}

func (m *ProfileMapper) ToEntity(p *model.RunnerProfile) *entity.RunnerProfile {
	if p == nil {
		return nil
	}
	return &entity.RunnerProfile{
		Id:                  p.Id,
		UserId:              p.UserId,
		Name:                p.Name,
		Gender:              p.Gender,
		BirthYear:           p.BirthYear,
		Level:               p.Level,
		WeeklySessions:      p.WeeklySessions,
		Current5KTime:       p.Current5KTime,
		RaceComingUp:        p.RaceComingUp,
		RaceDistance:        p.RaceDistance,
		RaceDate:            p.RaceDate,
		InjuryNotes:         p.InjuryNotes,
		Language:            p.Language,
		Agent:               p.Agent,
		ProfileComplete:     p.ProfileComplete,
		ConversationSummary: p.ConversationSummary,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (m *ProfileMapper) ToModel(p *entity.RunnerProfile) *model.RunnerProfile {
	if p == nil {
		return nil
	}
	return &model.RunnerProfile{
		Id:                  p.Id,
		UserId:              p.UserId,
		Name:                p.Name,
		Gender:              p.Gender,
		BirthYear:           p.BirthYear,
		Level:               p.Level,
		WeeklySessions:      p.WeeklySessions,
		Current5KTime:       p.Current5KTime,
		RaceComingUp:        p.RaceComingUp,
		RaceDistance:        p.RaceDistance,
		RaceDate:            p.RaceDate,
		InjuryNotes:         p.InjuryNotes,
		Language:            p.Language,
		Agent:               p.Agent,
		ProfileComplete:     p.ProfileComplete,
		ConversationSummary: p.ConversationSummary,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// ToDomain converts the persisted entity into the domain profile the
// conversation logic works with.
func (m *ProfileMapper) ToDomain(p *entity.RunnerProfile) *profile.Profile {
	if p == nil {
		return profile.New()
	}
	out := profile.New()
	out.Name = p.Name
	out.Gender = p.Gender
	out.BirthYear = p.BirthYear
	out.Level = p.Level
	out.WeeklySessions = p.WeeklySessions
	out.Current5KTime = p.Current5KTime
	out.RaceComingUp = p.RaceComingUp
	out.RaceDistance = p.RaceDistance
	out.RaceDate = p.RaceDate
	out.InjuryNotes = p.InjuryNotes
	if p.Language != "" {
		out.Language = p.Language
	}
	if p.Agent != "" {
		out.Agent = p.Agent
	}
	out.ProfileComplete = p.ProfileComplete
	out.ConversationSummary = p.ConversationSummary
	return out
}

// ApplyDomain writes the domain profile back onto the entity, leaving the
// identity and timestamps alone.
func (m *ProfileMapper) ApplyDomain(dst *entity.RunnerProfile, src *profile.Profile) {
	if dst == nil || src == nil {
		return
	}
	dst.Name = src.Name
	dst.Gender = src.Gender
	dst.BirthYear = src.BirthYear
	dst.Level = src.Level
	dst.WeeklySessions = src.WeeklySessions
	dst.Current5KTime = src.Current5KTime
	dst.RaceComingUp = src.RaceComingUp
	dst.RaceDistance = src.RaceDistance
	dst.RaceDate = src.RaceDate
	dst.InjuryNotes = src.InjuryNotes
	dst.Language = src.Language
	dst.Agent = src.Agent
	dst.ProfileComplete = src.ProfileComplete
	dst.ConversationSummary = src.ConversationSummary
}
