package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-contract-review-be/internal/config"
	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/repository/memory"
	"ai-contract-review-be/pkg/analysis"
	"ai-contract-review-be/pkg/extract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAssessment = `{
	"summary": "The contract is broadly standard with one aggressive clause.",
	"overall_score": 72,
	"flagged_clauses": [
		{"clause": "Non-compete for 24 months", "issue": "Unusually long restraint period", "severity": "high"}
	],
	"negotiation_messages": [
		{"clause": "Non-compete for 24 months", "message": "Could we reduce the non-compete period to 6 months?"}
	]
}`

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		ChunkSize:      80,
		ChunkOverlap:   10,
		TopK:           2,
		RetrievalQuery: "salary compensation termination clause",
	}
}

func writeContractFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func seedContract(uow *fakeUow, filePath, status string) *entity.Contract {
	c := &entity.Contract{
		Id:              uuid.New(),
		UserId:          uuid.New(),
		JobTitle:        "Backend Engineer",
		YearsExperience: 4,
		FileName:        "contract.txt",
		FilePath:        filePath,
		MediaType:       extract.MediaTypeText,
		Status:          status,
		CreatedAt:       time.Now(),
	}
	uow.contracts.items[c.Id] = c
	return c
}

func newTestAnalyzer(uow *fakeUow, embedder *stubEmbedder, model *stubLLM) IAnalyzerService {
	return newTestAnalyzerWithCache(uow, embedder, model, nil)
}

func newTestAnalyzerWithCache(uow *fakeUow, embedder *stubEmbedder, model *stubLLM, cache *memory.ContextCache) IAnalyzerService {
	return NewAnalyzerService(
		&fakeUowFactory{uow: uow},
		embedder,
		analysis.NewExtractor(model),
		extract.NewPlainTextExtractor(),
		testPipelineConfig(),
		nil,
		nil,
		cache,
		nopLogger{},
	)
}

func TestAnalyzerRunCompletesPipeline(t *testing.T) {
	uow := newFakeUow()
	contractText := "Salary is 90000 per year. " +
		"The employee agrees to a non-compete covering 24 months after termination. " +
		"Standard benefits apply including health insurance and paid leave for the full term."
	c := seedContract(uow, writeContractFile(t, contractText), entity.AnalysisStatusPending)

	embedder := &stubEmbedder{}
	svc := newTestAnalyzer(uow, embedder, &stubLLM{chatResponse: validAssessment})

	require.NoError(t, svc.Run(context.Background(), c.Id))

	stored := uow.contracts.items[c.Id]
	assert.Equal(t, entity.AnalysisStatusDone, stored.Status)
	assert.Empty(t, stored.ErrorReason)
	assert.Equal(t, []string{entity.AnalysisStatusAnalyzing, entity.AnalysisStatusDone}, uow.contracts.transitions)

	saved, err := uow.analyses.FindLatestByContractId(context.Background(), c.Id)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 72, saved.OverallScore)
	assert.Len(t, saved.FlaggedClauses, 1)
	assert.Equal(t, "high", saved.FlaggedClauses[0].Severity)
	assert.Len(t, saved.NegotiationMessages, 1)

	require.NotEmpty(t, uow.chunks.items)
	for _, chunk := range uow.chunks.items {
		assert.Equal(t, saved.Id, chunk.AnalysisId)
		assert.NotEmpty(t, chunk.Document)
		assert.Len(t, chunk.EmbeddingValue, 3)
	}
	// The chunk mentioning salary matches the retrieval query axis exactly.
	assert.InDelta(t, 1.0, uow.chunks.items[0].Score, 1e-9)

	assert.Equal(t, 1, embedder.manyCalls)
	assert.Equal(t, 1, embedder.oneCalls)
	assert.Equal(t, 1, uow.commits)
}

func TestAnalyzerRunEmptyDocument(t *testing.T) {
	uow := newFakeUow()
	c := seedContract(uow, writeContractFile(t, "   \n\t  "), entity.AnalysisStatusPending)

	embedder := &stubEmbedder{}
	svc := newTestAnalyzer(uow, embedder, &stubLLM{chatResponse: validAssessment})

	require.NoError(t, svc.Run(context.Background(), c.Id))

	stored := uow.contracts.items[c.Id]
	assert.Equal(t, entity.AnalysisStatusError, stored.Status)
	assert.Equal(t, "document contains no readable text", stored.ErrorReason)
	assert.Zero(t, embedder.manyCalls, "embedder should not run for an empty document")

	saved, err := uow.analyses.FindLatestByContractId(context.Background(), c.Id)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestAnalyzerRunUnreadableFile(t *testing.T) {
	uow := newFakeUow()
	c := seedContract(uow, filepath.Join(t.TempDir(), "missing.txt"), entity.AnalysisStatusPending)

	svc := newTestAnalyzer(uow, &stubEmbedder{}, &stubLLM{chatResponse: validAssessment})

	require.NoError(t, svc.Run(context.Background(), c.Id))

	stored := uow.contracts.items[c.Id]
	assert.Equal(t, entity.AnalysisStatusError, stored.Status)
	assert.Equal(t, "document could not be read", stored.ErrorReason)
}

func TestAnalyzerRunMalformedModelOutput(t *testing.T) {
	uow := newFakeUow()
	c := seedContract(uow, writeContractFile(t, "Salary and termination terms apply to this agreement."), entity.AnalysisStatusPending)

	svc := newTestAnalyzer(uow, &stubEmbedder{}, &stubLLM{chatResponse: "not json at all"})

	require.NoError(t, svc.Run(context.Background(), c.Id))

	stored := uow.contracts.items[c.Id]
	assert.Equal(t, entity.AnalysisStatusError, stored.Status)
	assert.Equal(t, "model returned malformed output", stored.ErrorReason)
	assert.Zero(t, uow.commits)
}

func TestAnalyzerRunReplacesPreviousAnalysis(t *testing.T) {
	uow := newFakeUow()
	c := seedContract(uow, writeContractFile(t, "Salary terms and a termination clause cover this role."), entity.AnalysisStatusPending)

	previous := &entity.Analysis{
		Id:         uuid.New(),
		ContractId: c.Id,
		Summary:    "stale run",
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, uow.analyses.Create(context.Background(), previous))
	require.NoError(t, uow.chunks.CreateBulk(context.Background(), []*entity.AnalysisChunk{
		{Id: uuid.New(), AnalysisId: previous.Id, Document: "old chunk"},
	}))

	svc := newTestAnalyzer(uow, &stubEmbedder{}, &stubLLM{chatResponse: validAssessment})
	require.NoError(t, svc.Run(context.Background(), c.Id))

	saved, err := uow.analyses.FindLatestByContractId(context.Background(), c.Id)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.NotEqual(t, previous.Id, saved.Id)
	assert.Equal(t, "The contract is broadly standard with one aggressive clause.", saved.Summary)

	for _, chunk := range uow.chunks.items {
		assert.NotEqual(t, previous.Id, chunk.AnalysisId, "chunks of the replaced run must be gone")
	}
}

func TestAnalyzerRunMissingContract(t *testing.T) {
	uow := newFakeUow()
	embedder := &stubEmbedder{}
	svc := newTestAnalyzer(uow, embedder, &stubLLM{chatResponse: validAssessment})

	require.NoError(t, svc.Run(context.Background(), uuid.New()))
	assert.Zero(t, embedder.manyCalls)
	assert.Empty(t, uow.contracts.transitions)
}

func TestAnalyzerRunDropsCachedChatContext(t *testing.T) {
	uow := newFakeUow()
	c := seedContract(uow, writeContractFile(t, "Salary terms and a termination clause cover this role."), entity.AnalysisStatusPending)

	cache := memory.NewContextCache()
	cache.Save(c.Id.String(), "grounding composed from the previous run")

	svc := newTestAnalyzerWithCache(uow, &stubEmbedder{}, &stubLLM{chatResponse: validAssessment}, cache)
	require.NoError(t, svc.Run(context.Background(), c.Id))

	_, found := cache.Get(c.Id.String())
	assert.False(t, found, "grounding for the replaced analysis must be evicted")
}

func TestAnalyzerTerminalStatusIsNotRegressed(t *testing.T) {
	uow := newFakeUow()
	c := seedContract(uow, filepath.Join(t.TempDir(), "missing.txt"), entity.AnalysisStatusDone)

	// A redelivered job for an already finished contract fails on the missing
	// file, but the terminal status must survive both the analyzing flip and
	// the error write.
	svc := newTestAnalyzer(uow, &stubEmbedder{}, &stubLLM{chatResponse: validAssessment})
	require.NoError(t, svc.Run(context.Background(), c.Id))

	stored := uow.contracts.items[c.Id]
	assert.Equal(t, entity.AnalysisStatusDone, stored.Status)
	assert.Empty(t, stored.ErrorReason)
	assert.Empty(t, uow.contracts.transitions)
}
