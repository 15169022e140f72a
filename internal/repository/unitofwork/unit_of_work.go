package unitofwork

import (
	"context"

	"run-coach-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	RunnerProfileRepository() contract.RunnerProfileRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ConversationMetaRepository() contract.ConversationMetaRepository
}
