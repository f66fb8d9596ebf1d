package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contract struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID `gorm:"type:uuid;not null;index"`
	JobTitle        string    `gorm:"type:varchar(255)"`
	YearsExperience int       `gorm:"default:0"`
	FileName        string    `gorm:"type:varchar(512)"`
	FilePath        string    `gorm:"type:varchar(1024)"`
	MediaType       string    `gorm:"type:varchar(16)"`
	Status          string    `gorm:"type:varchar(16);default:'pending';index"`
	ErrorReason     string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Contract) TableName() string {
	return "contracts"
}
