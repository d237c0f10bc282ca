package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user-owned money container, e.g. a current account or a wallet.
type Account struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"size:50;not null"`
	InitialBalance decimal.Decimal `json:"initialBalance" gorm:"type:decimal(20,2);not null;default:0"`
	ActualBalance  decimal.Decimal `json:"actualBalance" gorm:"type:decimal(20,2);not null;default:0"`
	Currency       string          `json:"currency" gorm:"type:char(3);not null"`
	UserID         uint            `json:"userId" gorm:"not null;index"`
	CreatedAt      time.Time       `json:"creationDate"`
	UpdatedAt      time.Time       `json:"-"`

	// Relations
	Transactions []Transaction `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// AccountChanges lists the fields an update may touch; nil means unchanged.
type AccountChanges struct {
	Name           *string
	InitialBalance *decimal.Decimal
	Currency       *string
}
