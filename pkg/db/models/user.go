package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string     `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	DisplayName   string     `gorm:"column:display_name;not null;default:''"`
	Role          string     `gorm:"column:role;not null;default:'USER'"`
	EmailVerified bool       `gorm:"column:email_verified;not null;default:false"`
	PhoneVerified bool       `gorm:"column:phone_verified;not null;default:false"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
