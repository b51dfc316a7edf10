package model

import (
	"time"
)

// Generation represents the database model for generation records
type Generation struct {
	ID            string    `gorm:"primaryKey;size:36"`
	AccountID     string    `gorm:"not null;index;size:128"`
	Type          string    `gorm:"not null;size:10"`
	URL           string    `gorm:"type:text"`
	ThumbnailURL  string    `gorm:"type:text"`
	Prompt        string    `gorm:"type:text;not null"`
	Model         string    `gorm:"not null;size:100"`
	ModelName     string    `gorm:"size:100"`
	Duration      string    `gorm:"size:10"`
	AspectRatio   string    `gorm:"size:10"`
	Status        string    `gorm:"not null;size:20;index"`
	Error         string    `gorm:"type:text"`
	CreditsCost   int64     `gorm:"not null"`
	ProviderJobID string    `gorm:"size:255;index"`
	CreatedAt     time.Time `gorm:"not null"`

	// Define relationships
	Account Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for Generation
func (Generation) TableName() string {
	return "generations"
}
