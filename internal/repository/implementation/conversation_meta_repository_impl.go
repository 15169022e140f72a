package implementation

import (
	"context"
	"errors"

	"run-coach-be/internal/entity"
	"run-coach-be/internal/mapper"
	"run-coach-be/internal/model"
	"run-coach-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationMetaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewConversationMetaRepository(db *gorm.DB) contract.ConversationMetaRepository {
	return &ConversationMetaRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ConversationMetaRepositoryImpl) Upsert(ctx context.Context, meta *entity.ConversationMeta) error {
	m := r.mapper.MetaToModel(meta)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tags", "urgency", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*meta = *r.mapper.MetaToEntity(m)
	return nil
}

func (r *ConversationMetaRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.ConversationMeta, error) {
	var m model.ConversationMeta
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MetaToEntity(&m), nil
}
