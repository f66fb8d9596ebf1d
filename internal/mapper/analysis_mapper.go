package mapper

import (
	"encoding/json"
	"fmt"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/model"
	"ai-contract-review-be/pkg/analysis"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type AnalysisMapper struct{}

func NewAnalysisMapper() *AnalysisMapper {
	return &AnalysisMapper{}
}

func (m *AnalysisMapper) ToEntity(a *model.Analysis) (*entity.Analysis, error) {
	if a == nil {
		return nil, nil
	}

	var flagged []analysis.FlaggedClause
	if len(a.FlaggedClauses) > 0 {
		if err := json.Unmarshal(a.FlaggedClauses, &flagged); err != nil {
			return nil, fmt.Errorf("unmarshal flagged clauses: %w", err)
		}
	}

	var negotiation []analysis.NegotiationMessage
	if len(a.NegotiationMessages) > 0 {
		if err := json.Unmarshal(a.NegotiationMessages, &negotiation); err != nil {
			return nil, fmt.Errorf("unmarshal negotiation messages: %w", err)
		}
	}

	if flagged == nil {
		flagged = []analysis.FlaggedClause{}
	}
	if negotiation == nil {
		negotiation = []analysis.NegotiationMessage{}
	}

	return &entity.Analysis{
		Id:                  a.Id,
		ContractId:          a.ContractId,
		Summary:             a.Summary,
		OverallScore:        a.OverallScore,
		FlaggedClauses:      flagged,
		NegotiationMessages: negotiation,
		CreatedAt:           a.CreatedAt,
	}, nil
}

func (m *AnalysisMapper) ToModel(a *entity.Analysis) (*model.Analysis, error) {
	if a == nil {
		return nil, nil
	}

	flagged, err := json.Marshal(a.FlaggedClauses)
	if err != nil {
		return nil, fmt.Errorf("marshal flagged clauses: %w", err)
	}

	negotiation, err := json.Marshal(a.NegotiationMessages)
	if err != nil {
		return nil, fmt.Errorf("marshal negotiation messages: %w", err)
	}

	return &model.Analysis{
		Id:                  a.Id,
		ContractId:          a.ContractId,
		Summary:             a.Summary,
		OverallScore:        a.OverallScore,
		FlaggedClauses:      datatypes.JSON(flagged),
		NegotiationMessages: datatypes.JSON(negotiation),
		CreatedAt:           a.CreatedAt,
	}, nil
}

func (m *AnalysisMapper) ChunkToEntity(c *model.AnalysisChunk) *entity.AnalysisChunk {
	if c == nil {
		return nil
	}
	return &entity.AnalysisChunk{
		Id:             c.Id,
		AnalysisId:     c.AnalysisId,
		ChunkIndex:     c.ChunkIndex,
		Document:       c.Document,
		Score:          c.Score,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *AnalysisMapper) ChunkToModel(c *entity.AnalysisChunk) *model.AnalysisChunk {
	if c == nil {
		return nil
	}
	return &model.AnalysisChunk{
		Id:             c.Id,
		AnalysisId:     c.AnalysisId,
		ChunkIndex:     c.ChunkIndex,
		Document:       c.Document,
		Score:          c.Score,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *AnalysisMapper) ChunksToModels(chunks []*entity.AnalysisChunk) []*model.AnalysisChunk {
	models := make([]*model.AnalysisChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ChunkToModel(c)
	}
	return models
}

func (m *AnalysisMapper) ChunksToEntities(chunks []*model.AnalysisChunk) []*entity.AnalysisChunk {
	entities := make([]*entity.AnalysisChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ChunkToEntity(c)
	}
	return entities
}
