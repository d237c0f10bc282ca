// Package repository implements persistence on top of GORM.
package repository

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coinhub/internal/model"
)

// wrapDB tags an unexpected database failure so it surfaces as an internal error.
func wrapDB(err error, op string, kv ...any) error {
	return oops.
		In("repository").
		Code("DB_" + op).
		With(kv...).
		Wrapf(err, "%s", op)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

type balanceSums struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// recalculateBalance sets actual_balance = initial_balance + incomes - expenses.
// It must run inside the transaction that changed the account's transactions.
func recalculateBalance(ctx context.Context, tx *gorm.DB, accountID uint) (decimal.Decimal, error) {
	var account model.Account
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, accountID).Error; err != nil {
		return decimal.Zero, err
	}

	var sums balanceSums
	if err := tx.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN is_income THEN amount ELSE 0 END), 0) AS income, "+
			"COALESCE(SUM(CASE WHEN is_income THEN 0 ELSE amount END), 0) AS expense").
		Where("account_id = ?", accountID).
		Scan(&sums).Error; err != nil {
		return decimal.Zero, err
	}

	actual := account.InitialBalance.Add(sums.Income).Sub(sums.Expense)
	if err := tx.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", accountID).
		Update("actual_balance", actual).Error; err != nil {
		return decimal.Zero, err
	}
	return actual, nil
}
