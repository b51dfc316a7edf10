package model

import (
	"time"
)

// Account represents the database model for accounts. The primary key is
// the external identity-provider UID.
type Account struct {
	ID               string    `gorm:"primaryKey;size:128"`
	Credits          int64     `gorm:"not null"`
	Tier             string    `gorm:"not null;size:20;default:free"`
	TotalGenerations uint64    `gorm:"default:0"`
	TotalSpent       int64     `gorm:"default:0"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
