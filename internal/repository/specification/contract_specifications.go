package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByContractID struct {
	ContractID uuid.UUID
}

func (s ByContractID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("contract_id = ?", s.ContractID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByAnalysisID struct {
	AnalysisID uuid.UUID
}

func (s ByAnalysisID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("analysis_id = ?", s.AnalysisID)
}
