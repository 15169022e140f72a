package implementation

import (
	"context"
	"errors"

	"run-coach-be/internal/entity"
	"run-coach-be/internal/mapper"
	"run-coach-be/internal/model"
	"run-coach-be/internal/repository/contract"
	"run-coach-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunnerProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProfileMapper
}

func NewRunnerProfileRepository(db *gorm.DB) contract.RunnerProfileRepository {
	return &RunnerProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewProfileMapper(),
	}
}

func (r *RunnerProfileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RunnerProfileRepositoryImpl) Create(ctx context.Context, p *entity.RunnerProfile) error {
	m := r.mapper.ToModel(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*p = *r.mapper.ToEntity(m)
	return nil
}

func (r *RunnerProfileRepositoryImpl) Update(ctx context.Context, p *entity.RunnerProfile) error {
	m := r.mapper.ToModel(p)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*p = *r.mapper.ToEntity(m)
	return nil
}

func (r *RunnerProfileRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RunnerProfile{}, id).Error
}

func (r *RunnerProfileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RunnerProfile, error) {
	var m model.RunnerProfile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RunnerProfileRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.RunnerProfile, error) {
	return r.FindOne(ctx, specification.UserOwnedBy{UserID: userId})
}

func (r *RunnerProfileRepositoryImpl) UpdateSummary(ctx context.Context, userId uuid.UUID, summary string) error {
	return r.db.WithContext(ctx).Model(&model.RunnerProfile{}).
		Where("user_id = ?", userId).
		Update("conversation_summary", summary).Error
}
