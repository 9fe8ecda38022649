package entities

import (
	"time"

	"github.com/google/uuid"
	"stream-service/constant"
)

type LiveStream struct {
	ID          uuid.UUID             `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID             `json:"user_id" gorm:"type:uuid;not null;index:idx_live_stream_user_id"`
	StreamID    string                `json:"stream_id" gorm:"type:varchar(255);not null;uniqueIndex:unique_stream_id"`
	StreamToken string                `json:"stream_token" gorm:"type:text;not null"`
	Title       string                `json:"title" gorm:"type:varchar(255);not null"`
	Status      constant.StreamStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index:idx_live_stream_status"`
	CreatedAt   time.Time             `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	EndedAt     *time.Time            `json:"ended_at" gorm:"type:timestamptz"`
}

func (LiveStream) TableName() string {
	return "live_stream"
}
