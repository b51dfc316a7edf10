package model

import (
	"time"
)

// Transaction represents the database model for ledger transactions.
// Append-only: rows are never updated or deleted.
type Transaction struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID   string    `gorm:"not null;index;size:128"`
	Type        string    `gorm:"not null;size:20"`
	Amount      int64     `gorm:"not null"` // signed: negative for debits
	Description string    `gorm:"type:text"`
	PaymentID   string    `gorm:"size:255"`
	CreatedAt   time.Time `gorm:"not null"`

	// Define relationships
	Account Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
