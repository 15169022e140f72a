package service

import (
	"context"
	"fmt"
	"time"

	"run-coach-be/internal/dto"
	"run-coach-be/internal/entity"
	"run-coach-be/internal/mapper"
	"run-coach-be/internal/repository/specification"
	"run-coach-be/internal/repository/unitofwork"
	"run-coach-be/pkg/coach/profile"
	"run-coach-be/pkg/coach/validate"
	"run-coach-be/pkg/events"
	pktNats "run-coach-be/pkg/nats"

	"github.com/google/uuid"
)

type IProfileService interface {
	GetAccount(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateAccount(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error
	DeleteAccount(ctx context.Context, userId uuid.UUID) error

	GetRunnerProfile(ctx context.Context, userId uuid.UUID) (*dto.RunnerProfileResponse, error)
	UpdateRunnerProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateRunnerProfileRequest) (*dto.RunnerProfileResponse, error)
	GetConversationMeta(ctx context.Context, userId uuid.UUID) (*dto.ConversationMetaDTO, error)
}

type profileService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	profileMapper  *mapper.ProfileMapper
}

func NewProfileService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IProfileService {
	return &profileService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		profileMapper:  mapper.NewProfileMapper(),
	}
}

func (s *profileService) GetAccount(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	avatarURL := ""
	if user.AvatarURL != nil {
		avatarURL = *user.AvatarURL
	}

	return &dto.UserProfileResponse{
		Id:        user.Id,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		Status:    string(user.Status),
		AvatarURL: avatarURL,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *profileService) UpdateAccount(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()
	user, err := repo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	user.FullName = req.FullName
	if req.Email != "" {
		user.Email = req.Email
	}
	return repo.Update(ctx, user)
}

func (s *profileService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "USER_DELETED",
			Data: map[string]interface{}{
				"user_id":     userId,
				"occurred_at": time.Now(),
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish USER_DELETED event: %v\n", err)
		}
	}

	return uow.UserRepository().Delete(ctx, userId)
}

func (s *profileService) GetRunnerProfile(ctx context.Context, userId uuid.UUID) (*dto.RunnerProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ent, err := uow.RunnerProfileRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		// A profile row is created at registration; a missing row means a
		// legacy account, so answer with the empty defaults.
		return runnerProfileToDTO(s.profileMapper.ToDomain(nil)), nil
	}
	return runnerProfileToDTO(s.profileMapper.ToDomain(ent)), nil
}

// UpdateRunnerProfile applies an explicit edit. Unlike passive inference,
// explicit edits overwrite already-set fields.
func (s *profileService) UpdateRunnerProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateRunnerProfileRequest) (*dto.RunnerProfileResponse, error) {
	patch := validate.SanitizePatch(req.Fields)
	if len(patch) == 0 {
		return nil, fmt.Errorf("no valid profile fields in request")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.RunnerProfileRepository()
	ent, err := repo.FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		ent = &entity.RunnerProfile{
			Id:       uuid.New(),
			UserId:   userId,
			Language: profile.LanguageEnglish,
			Agent:    profile.AgentCoach,
		}
		if err := repo.Create(ctx, ent); err != nil {
			return nil, err
		}
	}

	domain := s.profileMapper.ToDomain(ent)
	wasComplete := domain.ProfileComplete
	patch.Apply(domain, true)
	s.profileMapper.ApplyDomain(ent, domain)

	if err := repo.Update(ctx, ent); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if !wasComplete && domain.ProfileComplete && s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewProfileCompletedEvent(userId.String())); err != nil {
			fmt.Printf("[WARN] Failed to publish PROFILE_COMPLETED event: %v\n", err)
		}
	}

	return runnerProfileToDTO(domain), nil
}

func (s *profileService) GetConversationMeta(ctx context.Context, userId uuid.UUID) (*dto.ConversationMetaDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	meta, err := uow.ConversationMetaRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return &dto.ConversationMetaDTO{Tags: []string{}}, nil
	}
	return &dto.ConversationMetaDTO{
		Tags:      meta.Tags,
		Urgency:   meta.Urgency,
		UpdatedAt: meta.UpdatedAt,
	}, nil
}

func runnerProfileToDTO(p *profile.Profile) *dto.RunnerProfileResponse {
	return &dto.RunnerProfileResponse{
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
	}
}
