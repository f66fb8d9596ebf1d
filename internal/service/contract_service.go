package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"ai-contract-review-be/internal/dto"
	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/pkg/logger"
	"ai-contract-review-be/internal/repository/specification"
	"ai-contract-review-be/internal/repository/unitofwork"
	"ai-contract-review-be/pkg/extract"

	"github.com/google/uuid"
)

type IContractService interface {
	Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadContractRequest, file *multipart.FileHeader) (*dto.UploadContractResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ContractListItemResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowContractResponse, error)
	RequestAnalysis(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.RequestAnalysisResponse, error)
}

type contractService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	uploadDir        string
	log              logger.ILogger
}

func NewContractService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	uploadDir string,
	log logger.ILogger,
) IContractService {
	return &contractService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		uploadDir:        uploadDir,
		log:              log,
	}
}

func (s *contractService) Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadContractRequest, file *multipart.FileHeader) (*dto.UploadContractResponse, error) {
	mediaType := extract.DetectMediaType(file.Header.Get("Content-Type"), file.Filename)
	if mediaType == "" {
		return nil, errors.New("unsupported file type")
	}

	contractId := uuid.New()

	// Persist the upload before anything else; the worker reads from disk.
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return nil, err
	}
	storedName := fmt.Sprintf("%s%s", contractId, filepath.Ext(file.Filename))
	storedPath := filepath.Join(s.uploadDir, storedName)

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, err
	}

	contract := &entity.Contract{
		Id:              contractId,
		UserId:          userId,
		JobTitle:        req.JobTitle,
		YearsExperience: req.YearsExperience,
		FileName:        file.Filename,
		FilePath:        storedPath,
		MediaType:       mediaType,
		Status:          entity.AnalysisStatusPending,
		CreatedAt:       time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContractRepository().Create(ctx, contract); err != nil {
		return nil, err
	}

	if err := s.enqueueAnalysis(ctx, contract.Id); err != nil {
		// The upload itself succeeded; a manual re-trigger can recover.
		s.log.Error("contract", "Failed to enqueue analysis job", map[string]interface{}{
			"contract_id": contract.Id,
			"error":       err.Error(),
		})
	}

	return &dto.UploadContractResponse{
		Id:     contract.Id,
		Status: contract.Status,
	}, nil
}

func (s *contractService) enqueueAnalysis(ctx context.Context, contractId uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishAnalyzeContractMessage{ContractId: contractId})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func (s *contractService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ContractListItemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	contracts, err := uow.ContractRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ContractListItemResponse, 0, len(contracts))
	for _, c := range contracts {
		item := &dto.ContractListItemResponse{
			Id:              c.Id,
			FileName:        c.FileName,
			JobTitle:        c.JobTitle,
			YearsExperience: c.YearsExperience,
			Status:          c.Status,
			CreatedAt:       c.CreatedAt,
			UpdatedAt:       c.UpdatedAt,
		}
		if c.Status == entity.AnalysisStatusDone {
			if a, err := uow.AnalysisRepository().FindLatestByContractId(ctx, c.Id); err == nil && a != nil {
				score := a.OverallScore
				item.OverallScore = &score
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *contractService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowContractResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	c, err := uow.ContractRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}

	res := &dto.ShowContractResponse{
		Id:              c.Id,
		FileName:        c.FileName,
		FilePath:        c.FilePath,
		MediaType:       c.MediaType,
		JobTitle:        c.JobTitle,
		YearsExperience: c.YearsExperience,
		Status:          c.Status,
		ErrorReason:     c.ErrorReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}

	if c.Status == entity.AnalysisStatusDone {
		a, err := uow.AnalysisRepository().FindLatestByContractId(ctx, c.Id)
		if err != nil {
			return nil, err
		}
		if a != nil {
			res.Analysis = &dto.AnalysisResponse{
				Summary:             a.Summary,
				OverallScore:        a.OverallScore,
				FlaggedClauses:      a.FlaggedClauses,
				NegotiationMessages: a.NegotiationMessages,
				CreatedAt:           a.CreatedAt,
			}
		}
	}

	return res, nil
}

func (s *contractService) RequestAnalysis(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.RequestAnalysisResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	c, err := uow.ContractRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}

	if c.Status == entity.AnalysisStatusAnalyzing {
		return nil, errors.New("analysis already in progress")
	}

	// Reset terminal state so the worker can take the contract again.
	c.Status = entity.AnalysisStatusPending
	c.ErrorReason = ""
	now := time.Now()
	c.UpdatedAt = &now
	if err := uow.ContractRepository().Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.enqueueAnalysis(ctx, c.Id); err != nil {
		return nil, err
	}

	return &dto.RequestAnalysisResponse{
		Id:     c.Id,
		Status: c.Status,
	}, nil
}
