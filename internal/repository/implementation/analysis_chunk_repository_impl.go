package implementation

import (
	"context"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/mapper"
	"ai-contract-review-be/internal/model"
	"ai-contract-review-be/internal/repository/contract"
	"ai-contract-review-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalysisChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalysisMapper
}

func NewAnalysisChunkRepository(db *gorm.DB) contract.AnalysisChunkRepository {
	return &AnalysisChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalysisMapper(),
	}
}

func (r *AnalysisChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnalysisChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.AnalysisChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ChunksToModels(chunks)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *AnalysisChunkRepositoryImpl) DeleteByAnalysisId(ctx context.Context, analysisId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("analysis_id = ?", analysisId).Delete(&model.AnalysisChunk{}).Error
}

func (r *AnalysisChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalysisChunk, error) {
	var models []*model.AnalysisChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChunksToEntities(models), nil
}

func (r *AnalysisChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AnalysisChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
