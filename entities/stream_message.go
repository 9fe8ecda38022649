package entities

import (
	"time"

	"github.com/google/uuid"
)

// StreamMessage is an append-only chat row. StreamID references either a
// live_stream row or a coach_videos row (simulated live chat shares the
// same relay). Rows are never updated or deleted here.
type StreamMessage struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StreamID    uuid.UUID `json:"stream_id" gorm:"type:uuid;not null;index:idx_stream_messages_stream_id"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255);not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (StreamMessage) TableName() string {
	return "stream_messages"
}
