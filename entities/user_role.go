package entities

import (
	"time"

	"github.com/google/uuid"
	"stream-service/constant"
)

type UserRole struct {
	ID        uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index:idx_user_roles_user_id"`
	Role      constant.Role `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt *time.Time    `json:"created_at" gorm:"type:timestamptz"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
