package models

import (
	"time"

	"github.com/google/uuid"
)

// BankAccount is a destination account surfaced to customers paying by wire.
type BankAccount struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BankName      string    `gorm:"column:bank_name;not null"`
	AccountNumber string    `gorm:"column:account_number;not null"`
	AccountName   string    `gorm:"column:account_name;not null"`
	Active        bool      `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
