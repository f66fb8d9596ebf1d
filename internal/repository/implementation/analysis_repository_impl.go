package implementation

import (
	"context"
	"errors"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/mapper"
	"ai-contract-review-be/internal/model"
	"ai-contract-review-be/internal/repository/contract"
	"ai-contract-review-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalysisRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalysisMapper
}

func NewAnalysisRepository(db *gorm.DB) contract.AnalysisRepository {
	return &AnalysisRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalysisMapper(),
	}
}

func (r *AnalysisRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnalysisRepositoryImpl) Create(ctx context.Context, a *entity.Analysis) error {
	m, err := r.mapper.ToModel(a)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	e, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*a = *e
	return nil
}

func (r *AnalysisRepositoryImpl) DeleteByContractId(ctx context.Context, contractId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("contract_id = ?", contractId).Delete(&model.Analysis{}).Error
}

func (r *AnalysisRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analysis, error) {
	var m model.Analysis
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *AnalysisRepositoryImpl) FindLatestByContractId(ctx context.Context, contractId uuid.UUID) (*entity.Analysis, error) {
	var m model.Analysis
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractId).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}
