package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurnDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type SendChatRequest struct {
	Message string        `json:"message" validate:"required,max=4000"`
	History []ChatTurnDTO `json:"history" validate:"dive"`
}

type ChatHistoryItemResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
