package models

import (
	"gorm.io/gorm"
)

// User is an API account. Passwords are stored as bcrypt hashes.
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	gorm.Model
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
