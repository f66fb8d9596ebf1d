package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Analysis struct {
	Id                  uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractId          uuid.UUID      `gorm:"type:uuid;not null;index"`
	Summary             string         `gorm:"type:text"`
	OverallScore        int            `gorm:"not null"`
	FlaggedClauses      datatypes.JSON `gorm:"type:jsonb"`
	NegotiationMessages datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (Analysis) TableName() string {
	return "analyses"
}
