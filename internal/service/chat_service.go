package service

import (
	"context"
	"errors"
	"time"

	"ai-contract-review-be/internal/dto"
	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/pkg/logger"
	"ai-contract-review-be/internal/repository/memory"
	"ai-contract-review-be/internal/repository/specification"
	"ai-contract-review-be/internal/repository/unitofwork"
	"ai-contract-review-be/pkg/analysis"
	"ai-contract-review-be/pkg/llm"
	"ai-contract-review-be/pkg/rag"

	"github.com/google/uuid"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrAnalysisNotReady = errors.New("contract has no completed analysis")
)

type IChatService interface {
	// Stream answers a question about an analyzed contract. Deltas are
	// forwarded to onDelta as they arrive; the exchange is persisted only
	// after the stream has fully drained.
	Stream(ctx context.Context, userId, contractId uuid.UUID, req *dto.SendChatRequest, onDelta func(string) error) error
	History(ctx context.Context, userId, contractId uuid.UUID) ([]*dto.ChatHistoryItemResponse, error)
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	llmProvider  llm.Provider
	contextCache *memory.ContextCache
	log          logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.Provider,
	contextCache *memory.ContextCache,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		llmProvider:  llmProvider,
		contextCache: contextCache,
		log:          log,
	}
}

func (s *chatService) Stream(ctx context.Context, userId, contractId uuid.UUID, req *dto.SendChatRequest, onDelta func(string) error) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	contract, err := uow.ContractRepository().FindOne(ctx,
		specification.ByID{ID: contractId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if contract == nil {
		return ErrContractNotFound
	}
	if contract.Status != entity.AnalysisStatusDone {
		return ErrAnalysisNotReady
	}

	systemContext, err := s.systemContext(ctx, uow, contract)
	if err != nil {
		return err
	}

	priorTurns := make([]llm.Message, 0, len(req.History))
	for _, t := range req.History {
		priorTurns = append(priorTurns, llm.Message{Role: t.Role, Content: t.Content})
	}

	history := rag.BuildChatHistory(systemContext, priorTurns, req.Message)

	fullReply, err := s.llmProvider.ChatStream(ctx, history, onDelta)
	if err != nil {
		// Nothing is persisted for an interrupted exchange.
		return err
	}

	now := time.Now()
	userMsg := &entity.ChatMessage{
		Id:         uuid.New(),
		ContractId: contract.Id,
		Role:       llm.RoleUser,
		Content:    req.Message,
		CreatedAt:  now,
	}
	assistantMsg := &entity.ChatMessage{
		Id:         uuid.New(),
		ContractId: contract.Id,
		Role:       llm.RoleAssistant,
		Content:    fullReply,
		CreatedAt:  now.Add(time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("chat", "Chat exchange persisted", map[string]interface{}{
		"contract_id":  contract.Id,
		"reply_length": len(fullReply),
	})
	return nil
}

// systemContext returns the cached grounding context for the contract,
// composing and caching it on a miss.
func (s *chatService) systemContext(ctx context.Context, uow unitofwork.UnitOfWork, contract *entity.Contract) (string, error) {
	key := contract.Id.String()
	if cached, found := s.contextCache.Get(key); found {
		return cached, nil
	}

	a, err := uow.AnalysisRepository().FindLatestByContractId(ctx, contract.Id)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", ErrAnalysisNotReady
	}

	result := &analysis.Result{
		Summary:             a.Summary,
		OverallScore:        a.OverallScore,
		FlaggedClauses:      a.FlaggedClauses,
		NegotiationMessages: a.NegotiationMessages,
	}
	composed := rag.ComposeSystemContext(result, contract.JobTitle, contract.YearsExperience)
	s.contextCache.Save(key, composed)
	return composed, nil
}

func (s *chatService) History(ctx context.Context, userId, contractId uuid.UUID) ([]*dto.ChatHistoryItemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	contract, err := uow.ContractRepository().FindOne(ctx,
		specification.ByID{ID: contractId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByContractID{ContractID: contractId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatHistoryItemResponse, len(messages))
	for i, m := range messages {
		items[i] = &dto.ChatHistoryItemResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return items, nil
}
