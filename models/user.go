package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:150" json:"email"`
	Name      string         `gorm:"size:255" json:"name"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash
	Role      UserRole       `gorm:"type:varchar(10);default:'viewer'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
