package contract

import (
	"context"

	"run-coach-be/internal/entity"
	"run-coach-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RunnerProfileRepository interface {
	Create(ctx context.Context, p *entity.RunnerProfile) error
	Update(ctx context.Context, p *entity.RunnerProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RunnerProfile, error)
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.RunnerProfile, error)

	// UpdateSummary writes only the conversation summary column so a
	// background summarize run cannot clobber concurrent profile edits.
	UpdateSummary(ctx context.Context, userId uuid.UUID, summary string) error
}
