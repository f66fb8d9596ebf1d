package mapper

import (
	"time"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/model"

	"gorm.io/gorm"
)

type ContractMapper struct{}

func NewContractMapper() *ContractMapper {
	return &ContractMapper{}
}

func (m *ContractMapper) ToEntity(c *model.Contract) *entity.Contract {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Contract{
		Id:              c.Id,
		UserId:          c.UserId,
		JobTitle:        c.JobTitle,
		YearsExperience: c.YearsExperience,
		FileName:        c.FileName,
		FilePath:        c.FilePath,
		MediaType:       c.MediaType,
		Status:          c.Status,
		ErrorReason:     c.ErrorReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       c.DeletedAt.Valid,
	}
}

func (m *ContractMapper) ToModel(c *entity.Contract) *model.Contract {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Contract{
		Id:              c.Id,
		UserId:          c.UserId,
		JobTitle:        c.JobTitle,
		YearsExperience: c.YearsExperience,
		FileName:        c.FileName,
		FilePath:        c.FilePath,
		MediaType:       c.MediaType,
		Status:          c.Status,
		ErrorReason:     c.ErrorReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}

func (m *ContractMapper) ToEntities(contracts []*model.Contract) []*entity.Contract {
	entities := make([]*entity.Contract, len(contracts))
	for i, c := range contracts {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
