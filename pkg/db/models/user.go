package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/enums"
)

// User is a POS operator account.
type User struct {
	ID                    uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                  string         `gorm:"column:name;not null"`
	Email                 string         `gorm:"column:email;type:text;not null;uniqueIndex:ux_users_email"`
	PasswordHash          string         `gorm:"column:password_hash;not null"`
	Role                  enums.UserRole `gorm:"column:role;type:user_role;not null;default:seller"`
	TempPasswordHash      *string        `gorm:"column:temp_password_hash"`
	TempPasswordExpiresAt *time.Time     `gorm:"column:temp_password_expires_at"`
	LastLoginAt           *time.Time     `gorm:"column:last_login_at"`
	CreatedAt             time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
