package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser       = "USER"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	ProfileImage string     `gorm:"default:''"`
	Name         string     `gorm:"default:''"`
	Email        string     `gorm:"unique;not null"`
	Role         string     `gorm:"default:'USER'"` // USER, INSTRUCTOR, ADMIN
	LastLogin    *time.Time `json:"last_login"`
	IsDeleted    bool       `gorm:"default:false"`
}
