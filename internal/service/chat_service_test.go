package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-contract-review-be/internal/dto"
	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/repository/memory"
	"ai-contract-review-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAnalyzedContract(uow *fakeUow) *entity.Contract {
	c := &entity.Contract{
		Id:              uuid.New(),
		UserId:          uuid.New(),
		JobTitle:        "Data Engineer",
		YearsExperience: 6,
		FileName:        "offer.txt",
		Status:          entity.AnalysisStatusDone,
		CreatedAt:       time.Now(),
	}
	uow.contracts.items[c.Id] = c
	a := &entity.Analysis{
		Id:           uuid.New(),
		ContractId:   c.Id,
		Summary:      "Mostly standard terms.",
		OverallScore: 81,
		CreatedAt:    time.Now(),
	}
	uow.analyses.items[a.Id] = a
	return c
}

func newTestChatService(uow *fakeUow, model *stubLLM) (IChatService, *memory.ContextCache) {
	cache := memory.NewContextCache()
	return NewChatService(&fakeUowFactory{uow: uow}, model, cache, nopLogger{}), cache
}

func TestChatStreamPersistsExchangeAfterDrain(t *testing.T) {
	uow := newFakeUow()
	c := seedAnalyzedContract(uow)

	model := &stubLLM{streamDeltas: []string{"The non-compete ", "clause is ", "negotiable."}}
	svc, _ := newTestChatService(uow, model)

	var received []string
	req := &dto.SendChatRequest{Message: "Can I negotiate the non-compete?"}
	err := svc.Stream(context.Background(), c.UserId, c.Id, req, func(delta string) error {
		received = append(received, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"The non-compete ", "clause is ", "negotiable."}, received)

	messages, err := uow.chats.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleUser, messages[0].Role)
	assert.Equal(t, req.Message, messages[0].Content)
	assert.Equal(t, llm.RoleAssistant, messages[1].Role)
	assert.Equal(t, "The non-compete clause is negotiable.", messages[1].Content)
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))
	assert.Equal(t, 1, uow.commits)
}

func TestChatStreamInterruptedPersistsNothing(t *testing.T) {
	uow := newFakeUow()
	c := seedAnalyzedContract(uow)

	model := &stubLLM{
		streamDeltas: []string{"partial ", "answer"},
		streamErr:    llm.ErrModelService,
		failAfter:    1,
	}
	svc, _ := newTestChatService(uow, model)

	err := svc.Stream(context.Background(), c.UserId, c.Id, &dto.SendChatRequest{Message: "hello"}, func(string) error { return nil })
	require.ErrorIs(t, err, llm.ErrModelService)

	count, _ := uow.chats.Count(context.Background())
	assert.Zero(t, count, "an interrupted exchange must leave no rows behind")
	assert.Zero(t, uow.commits)
}

func TestChatStreamContractNotFound(t *testing.T) {
	uow := newFakeUow()
	c := seedAnalyzedContract(uow)

	svc, _ := newTestChatService(uow, &stubLLM{})

	// Unknown contract id.
	err := svc.Stream(context.Background(), c.UserId, uuid.New(), &dto.SendChatRequest{Message: "hi"}, func(string) error { return nil })
	assert.ErrorIs(t, err, ErrContractNotFound)

	// Someone else's contract looks identical to a missing one.
	err = svc.Stream(context.Background(), uuid.New(), c.Id, &dto.SendChatRequest{Message: "hi"}, func(string) error { return nil })
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestChatStreamRequiresCompletedAnalysis(t *testing.T) {
	uow := newFakeUow()
	c := seedAnalyzedContract(uow)
	uow.contracts.items[c.Id].Status = entity.AnalysisStatusAnalyzing

	svc, _ := newTestChatService(uow, &stubLLM{})

	err := svc.Stream(context.Background(), c.UserId, c.Id, &dto.SendChatRequest{Message: "hi"}, func(string) error { return nil })
	assert.ErrorIs(t, err, ErrAnalysisNotReady)
}

func TestChatStreamUsesCachedSystemContext(t *testing.T) {
	uow := newFakeUow()
	c := seedAnalyzedContract(uow)

	svc, cache := newTestChatService(uow, &stubLLM{streamDeltas: []string{"ok"}})

	req := &dto.SendChatRequest{Message: "first"}
	require.NoError(t, svc.Stream(context.Background(), c.UserId, c.Id, req, func(string) error { return nil }))

	composed, found := cache.Get(c.Id.String())
	require.True(t, found)
	assert.Contains(t, composed, "Mostly standard terms.")

	// Drop the stored analysis; the second turn must still work off the cache.
	require.NoError(t, uow.analyses.DeleteByContractId(context.Background(), c.Id))
	req = &dto.SendChatRequest{
		Message: "second",
		History: []dto.ChatTurnDTO{{Role: llm.RoleUser, Content: "first"}, {Role: llm.RoleAssistant, Content: "ok"}},
	}
	require.NoError(t, svc.Stream(context.Background(), c.UserId, c.Id, req, func(string) error { return nil }))
}

const revisedAssessment = `{
	"summary": "Revised run: a severe non-compete was added.",
	"overall_score": 15,
	"flagged_clauses": [],
	"negotiation_messages": []
}`

func TestChatGroundingFollowsReanalysis(t *testing.T) {
	uow := newFakeUow()
	c := seedContract(uow, writeContractFile(t, "Salary terms and a termination clause cover this role."), entity.AnalysisStatusPending)

	cache := memory.NewContextCache()
	analyzer := newTestAnalyzerWithCache(uow, &stubEmbedder{}, &stubLLM{chatResponse: validAssessment}, cache)
	require.NoError(t, analyzer.Run(context.Background(), c.Id))

	chatModel := &stubLLM{streamDeltas: []string{"ok"}}
	chat := NewChatService(&fakeUowFactory{uow: uow}, chatModel, cache, nopLogger{})

	req := &dto.SendChatRequest{Message: "How risky is this contract?"}
	require.NoError(t, chat.Stream(context.Background(), c.UserId, c.Id, req, func(string) error { return nil }))
	require.NotEmpty(t, chatModel.lastHistory)
	assert.Contains(t, chatModel.lastHistory[0].Content, "broadly standard")

	// Re-analysis resets the terminal status before re-enqueueing, then the
	// run replaces the stored assessment.
	uow.contracts.items[c.Id].Status = entity.AnalysisStatusPending
	reRun := newTestAnalyzerWithCache(uow, &stubEmbedder{}, &stubLLM{chatResponse: revisedAssessment}, cache)
	require.NoError(t, reRun.Run(context.Background(), c.Id))

	require.NoError(t, chat.Stream(context.Background(), c.UserId, c.Id, req, func(string) error { return nil }))
	assert.Contains(t, chatModel.lastHistory[0].Content, "Revised run: a severe non-compete was added.")
	assert.NotContains(t, chatModel.lastHistory[0].Content, "broadly standard")
}

func TestChatHistoryOrderedOldestFirst(t *testing.T) {
	uow := newFakeUow()
	c := seedAnalyzedContract(uow)

	base := time.Now().Add(-time.Hour)
	for i, turn := range []struct{ role, content string }{
		{llm.RoleUser, "Is the salary clause standard?"},
		{llm.RoleAssistant, "Yes, for the market."},
		{llm.RoleUser, "And the termination notice?"},
	} {
		require.NoError(t, uow.chats.Create(context.Background(), &entity.ChatMessage{
			Id:         uuid.New(),
			ContractId: c.Id,
			Role:       turn.role,
			Content:    turn.content,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// A message on another contract must not leak in.
	require.NoError(t, uow.chats.Create(context.Background(), &entity.ChatMessage{
		Id:         uuid.New(),
		ContractId: uuid.New(),
		Role:       llm.RoleUser,
		Content:    "unrelated",
		CreatedAt:  base,
	}))

	svc, _ := newTestChatService(uow, &stubLLM{})

	items, err := svc.History(context.Background(), c.UserId, c.Id)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Is the salary clause standard?", items[0].Content)
	assert.Equal(t, "And the termination notice?", items[2].Content)
	for _, item := range items {
		assert.False(t, strings.Contains(item.Content, "unrelated"))
	}

	_, err = svc.History(context.Background(), uuid.New(), c.Id)
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestChatStreamOnDeltaAbort(t *testing.T) {
	uow := newFakeUow()
	c := seedAnalyzedContract(uow)

	svc, _ := newTestChatService(uow, &stubLLM{streamDeltas: []string{"a", "b", "c"}})

	abort := errors.New("client went away")
	err := svc.Stream(context.Background(), c.UserId, c.Id, &dto.SendChatRequest{Message: "hi"}, func(string) error { return abort })
	require.ErrorIs(t, err, abort)

	count, _ := uow.chats.Count(context.Background())
	assert.Zero(t, count)
}
