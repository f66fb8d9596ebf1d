package unitofwork

import (
	"context"

	"ai-contract-review-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ContractRepository() contract.ContractRepository
	AnalysisRepository() contract.AnalysisRepository
	AnalysisChunkRepository() contract.AnalysisChunkRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
