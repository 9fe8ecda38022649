package entities

import (
	"time"

	"github.com/google/uuid"
)

type CoachVideo struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CoachID       uuid.UUID  `json:"coach_id" gorm:"type:uuid;not null;index:idx_coach_videos_coach_id"`
	Title         string     `json:"title" gorm:"type:varchar(255);not null"`
	Description   *string    `json:"description" gorm:"type:text"`
	VideoURL      string     `json:"video_url" gorm:"type:text;not null"`
	ObjectName    string     `json:"object_name" gorm:"type:varchar(500);not null"`
	IsLive        bool       `json:"is_live" gorm:"not null;default:false;index:idx_coach_videos_is_live"`
	LiveStartedAt *time.Time `json:"live_started_at" gorm:"type:timestamptz"`
	CreatedAt     time.Time  `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (CoachVideo) TableName() string {
	return "coach_videos"
}
