package entities

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	DisplayName string     `json:"display_name" gorm:"type:varchar(255);not null"`
	AvatarURL   *string    `json:"avatar_url" gorm:"type:text"`
	CreatedAt   *time.Time `json:"created_at" gorm:"type:timestamptz"`
	UpdatedAt   *time.Time `json:"updated_at" gorm:"type:timestamptz"`
}

func (Profile) TableName() string {
	return "profiles"
}
