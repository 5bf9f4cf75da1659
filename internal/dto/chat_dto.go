package dto

import (
	"time"

	"github.com/google/uuid"

	"gemini-chat-be/internal/entity"
)

type SendChatRequest struct {
	Prompt         string     `json:"prompt" validate:"required"`
	ConversationId *uuid.UUID `json:"conversationId,omitempty"`
}

type SendChatResponse struct {
	Reply          string           `json:"reply"`
	History        []entity.Message `json:"history"`
	ConversationId uuid.UUID        `json:"conversationId"`
}

type ConversationResponse struct {
	Id        uuid.UUID        `json:"id"`
	History   []entity.Message `json:"history"`
	CreatedAt time.Time        `json:"createdAt"`
}
