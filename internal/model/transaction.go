package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an income or an expense booked on an account.
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	IsIncome    bool            `json:"isIncome" gorm:"not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Description *string         `json:"description" gorm:"size:255"`
	Date        time.Time       `json:"date" gorm:"not null;index"`
	AccountID   uint            `json:"accountId" gorm:"not null;index"`
	CategoryID  uint            `json:"categoryId" gorm:"not null;index"`
}

// Signed returns the amount as it affects the account balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.IsIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// TransactionChanges lists the fields an update may touch; nil means unchanged.
type TransactionChanges struct {
	IsIncome         *bool
	Amount           *decimal.Decimal
	Description      *string
	ClearDescription bool
	Date             *time.Time
	CategoryID       *uint
}
