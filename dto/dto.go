package dto

import (
	"github.com/google/uuid"
	"stream-service/entities"
)

// StreamManagementRequest is the single dispatch envelope; the action field
// selects the operation.
type StreamManagementRequest struct {
	Action   string `json:"action" binding:"required"`
	Title    string `json:"title"`
	StreamID string `json:"streamId"`
}

type CreateStreamResponse struct {
	StreamID string               `json:"streamId"`
	Token    string               `json:"token"`
	APIKey   string               `json:"apiKey"`
	Data     *entities.LiveStream `json:"data"`
}

type ViewerTokenResponse struct {
	Token  string    `json:"token"`
	APIKey string    `json:"apiKey"`
	UserID uuid.UUID `json:"userId"`
}

type RejoinResponse struct {
	StreamID string               `json:"streamId"`
	Token    string               `json:"token"`
	APIKey   string               `json:"apiKey"`
	Data     *entities.LiveStream `json:"data"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ChangeEvent is the row-change notification fanned out through the stream
// exchange to every service instance, then relayed to websocket feeds.
type ChangeEvent struct {
	Type     string                  `json:"type"`
	StreamID string                  `json:"streamId"`
	Message  *entities.StreamMessage `json:"message,omitempty"`
}

// ChatHistory is the initial frame sent on a chat subscription before the
// live feed takes over.
type ChatHistory struct {
	Type     string                    `json:"type"`
	StreamID string                    `json:"streamId"`
	Messages []*entities.StreamMessage `json:"messages"`
}
