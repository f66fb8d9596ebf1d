package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ai-contract-review-be/internal/config"
	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/pkg/logger"
	"ai-contract-review-be/internal/pkg/mailer"
	"ai-contract-review-be/internal/repository/memory"
	"ai-contract-review-be/internal/repository/specification"
	"ai-contract-review-be/internal/repository/unitofwork"
	"ai-contract-review-be/pkg/analysis"
	"ai-contract-review-be/pkg/chunker"
	"ai-contract-review-be/pkg/embedding"
	"ai-contract-review-be/pkg/events"
	"ai-contract-review-be/pkg/extract"
	pkgNats "ai-contract-review-be/pkg/nats"
	"ai-contract-review-be/pkg/ranking"

	"github.com/google/uuid"
)

const (
	EventContractAnalyzed       = "CONTRACT_ANALYZED"
	EventContractAnalysisFailed = "CONTRACT_ANALYSIS_FAILED"
)

// IAnalyzerService runs the full analysis pipeline for one contract:
// extract text, chunk, embed, rank against the retrieval query, ask the
// model for the structured assessment, persist everything.
type IAnalyzerService interface {
	Run(ctx context.Context, contractId uuid.UUID) error
}

type analyzerService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	extractor         *analysis.Extractor
	textExtractor     extract.TextExtractor
	pipeline          config.PipelineConfig
	eventPublisher    *pkgNats.Publisher
	emailService      mailer.IEmailService
	contextCache      *memory.ContextCache
	log               logger.ILogger
}

func NewAnalyzerService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	extractor *analysis.Extractor,
	textExtractor extract.TextExtractor,
	pipeline config.PipelineConfig,
	eventPublisher *pkgNats.Publisher,
	emailService mailer.IEmailService,
	contextCache *memory.ContextCache,
	log logger.ILogger,
) IAnalyzerService {
	return &analyzerService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		extractor:         extractor,
		textExtractor:     textExtractor,
		pipeline:          pipeline,
		eventPublisher:    eventPublisher,
		emailService:      emailService,
		contextCache:      contextCache,
		log:               log,
	}
}

func (s *analyzerService) Run(ctx context.Context, contractId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	contract, err := uow.ContractRepository().FindOne(ctx, specification.ByID{ID: contractId})
	if err != nil {
		return err
	}
	if contract == nil {
		s.log.Warn("analyzer", "Contract not found, skipping", map[string]interface{}{
			"contract_id": contractId,
		})
		return nil
	}

	// The status flips before any model call so observers see progress.
	if err := uow.ContractRepository().UpdateStatus(ctx, contract.Id, entity.AnalysisStatusAnalyzing); err != nil {
		return err
	}

	result, scored, runErr := s.analyze(ctx, contract)
	if runErr != nil {
		reason := failureReason(runErr)
		s.log.Error("analyzer", "Analysis failed", map[string]interface{}{
			"contract_id": contract.Id,
			"error":       runErr.Error(),
		})
		if err := uow.ContractRepository().SetError(ctx, contract.Id, reason); err != nil {
			return err
		}
		s.notifyFailure(ctx, contract, reason)
		return nil
	}

	if err := s.persist(ctx, uow, contract, result, scored); err != nil {
		s.log.Error("analyzer", "Failed to persist analysis", map[string]interface{}{
			"contract_id": contract.Id,
			"error":       err.Error(),
		})
		if setErr := uow.ContractRepository().SetError(ctx, contract.Id, "failed to persist analysis"); setErr != nil {
			return setErr
		}
		s.notifyFailure(ctx, contract, "failed to persist analysis")
		return nil
	}

	if err := uow.ContractRepository().UpdateStatus(ctx, contract.Id, entity.AnalysisStatusDone); err != nil {
		return err
	}

	// Chat grounding composed from the replaced analysis must not survive.
	if s.contextCache != nil {
		s.contextCache.Delete(contract.Id.String())
	}

	s.log.Info("analyzer", "Analysis complete", map[string]interface{}{
		"contract_id":   contract.Id,
		"overall_score": result.OverallScore,
		"flagged":       len(result.FlaggedClauses),
	})
	s.notifySuccess(ctx, contract, result)
	return nil
}

func (s *analyzerService) analyze(ctx context.Context, contract *entity.Contract) (*analysis.Result, []ranking.RankedChunk, error) {
	data, err := os.ReadFile(contract.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", extract.ErrUnreadableDocument, err)
	}

	text, err := s.textExtractor.Extract(data, contract.MediaType)
	if err != nil {
		return nil, nil, err
	}

	chunks, err := chunker.Split(text, s.pipeline.ChunkSize, s.pipeline.ChunkOverlap)
	if err != nil {
		return nil, nil, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	chunkEmbeddings, err := s.embeddingProvider.EmbedMany(ctx, texts, embedding.TaskDocument)
	if err != nil {
		return nil, nil, err
	}

	queryEmbedding, err := s.embeddingProvider.EmbedOne(ctx, s.pipeline.RetrievalQuery, embedding.TaskQuery)
	if err != nil {
		return nil, nil, err
	}

	// Rank everything so each stored chunk carries its score; the prompt
	// only sees the top slice.
	scored := ranking.Rank(chunks, chunkEmbeddings, queryEmbedding, len(chunks))

	topK := s.pipeline.TopK
	if topK > len(scored) {
		topK = len(scored)
	}
	topTexts := make([]string, topK)
	for i := 0; i < topK; i++ {
		topTexts[i] = scored[i].Chunk.Text
	}

	result, err := s.extractor.Analyze(ctx, analysis.Input{
		TopChunksText:   strings.Join(topTexts, "\n\n"),
		JobTitle:        contract.JobTitle,
		YearsExperience: contract.YearsExperience,
	})
	if err != nil {
		return nil, nil, err
	}

	return result, scored, nil
}

// persist replaces any previous analysis for the contract in one transaction.
func (s *analyzerService) persist(ctx context.Context, uow unitofwork.UnitOfWork, contract *entity.Contract, result *analysis.Result, scored []ranking.RankedChunk) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	previous, err := uow.AnalysisRepository().FindLatestByContractId(ctx, contract.Id)
	if err != nil {
		return err
	}
	if previous != nil {
		if err := uow.AnalysisChunkRepository().DeleteByAnalysisId(ctx, previous.Id); err != nil {
			return err
		}
		if err := uow.AnalysisRepository().DeleteByContractId(ctx, contract.Id); err != nil {
			return err
		}
	}

	record := &entity.Analysis{
		Id:                  uuid.New(),
		ContractId:          contract.Id,
		Summary:             result.Summary,
		OverallScore:        result.OverallScore,
		FlaggedClauses:      result.FlaggedClauses,
		NegotiationMessages: result.NegotiationMessages,
		CreatedAt:           time.Now(),
	}
	if err := uow.AnalysisRepository().Create(ctx, record); err != nil {
		return err
	}

	chunkRows := make([]*entity.AnalysisChunk, len(scored))
	for i, sc := range scored {
		chunkRows[i] = &entity.AnalysisChunk{
			Id:             uuid.New(),
			AnalysisId:     record.Id,
			ChunkIndex:     sc.Chunk.Index,
			Document:       sc.Chunk.Text,
			Score:          sc.Score,
			EmbeddingValue: sc.Embedding,
			CreatedAt:      time.Now(),
		}
	}
	if err := uow.AnalysisChunkRepository().CreateBulk(ctx, chunkRows); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *analyzerService) notifySuccess(ctx context.Context, contract *entity.Contract, result *analysis.Result) {
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: EventContractAnalyzed,
			Data: map[string]interface{}{
				"contract_id":   contract.Id,
				"user_id":       contract.UserId,
				"file_name":     contract.FileName,
				"overall_score": result.OverallScore,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("analyzer", "Failed to publish analyzed event", map[string]interface{}{
				"contract_id": contract.Id,
				"error":       err.Error(),
			})
		}
	}
	if s.emailService != nil {
		if email := s.ownerEmail(ctx, contract.UserId); email != "" {
			if err := s.emailService.SendAnalysisReady(email, contract.FileName, result.OverallScore); err != nil {
				s.log.Warn("analyzer", "Failed to send analysis email", map[string]interface{}{
					"contract_id": contract.Id,
					"error":       err.Error(),
				})
			}
		}
	}
}

func (s *analyzerService) notifyFailure(ctx context.Context, contract *entity.Contract, reason string) {
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: EventContractAnalysisFailed,
			Data: map[string]interface{}{
				"contract_id": contract.Id,
				"user_id":     contract.UserId,
				"file_name":   contract.FileName,
				"reason":      reason,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("analyzer", "Failed to publish failure event", map[string]interface{}{
				"contract_id": contract.Id,
				"error":       err.Error(),
			})
		}
	}
	if s.emailService != nil {
		if email := s.ownerEmail(ctx, contract.UserId); email != "" {
			if err := s.emailService.SendAnalysisFailed(email, contract.FileName, reason); err != nil {
				s.log.Warn("analyzer", "Failed to send failure email", map[string]interface{}{
					"contract_id": contract.Id,
					"error":       err.Error(),
				})
			}
		}
	}
}

func (s *analyzerService) ownerEmail(ctx context.Context, userId uuid.UUID) string {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		return ""
	}
	return user.Email
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, chunker.ErrEmptyDocument):
		return "document contains no readable text"
	case errors.Is(err, extract.ErrUnreadableDocument):
		return "document could not be read"
	case errors.Is(err, embedding.ErrEmbeddingService):
		return "embedding service unavailable"
	case errors.Is(err, analysis.ErrMalformedOutput):
		return "model returned malformed output"
	default:
		return err.Error()
	}
}
