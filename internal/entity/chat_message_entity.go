package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractId uuid.UUID `gorm:"type:uuid;index"`
	Role       string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
