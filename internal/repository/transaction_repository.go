package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
)

// TransactionRepository defines persistence for account transactions.
// Every write recalculates the owning account's balance in the same DB transaction.
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	FindByID(ctx context.Context, id uint) (*model.Transaction, bool, error)
	ListByAccount(ctx context.Context, accountID uint) ([]model.Transaction, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Transaction, error)
	Update(ctx context.Context, id uint, changes model.TransactionChanges) (*model.Transaction, error)
	Delete(ctx context.Context, id uint) error
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		_, err := recalculateBalance(ctx, tx, txn.AccountID)
		return err
	})
	if err != nil {
		// the account was deleted after the ownership check
		if isNotFound(err) || errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperrors.NewNotFoundError("account")
		}
		return wrapDB(err, "CREATE_TRANSACTION", "account_id", txn.AccountID)
	}
	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*model.Transaction, bool, error) {
	var txn model.Transaction
	if err := r.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapDB(err, "FIND_TRANSACTION", "transaction_id", id)
	}
	return &txn, true, nil
}

// ListByAccount returns the account's transactions, newest first.
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uint) ([]model.Transaction, error) {
	var txns []model.Transaction
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("date DESC, id DESC").
		Find(&txns).Error; err != nil {
		return nil, wrapDB(err, "LIST_TRANSACTIONS", "account_id", accountID)
	}
	return txns, nil
}

// ListByUser returns the transactions of every account owned by userID, newest first.
func (r *transactionRepository) ListByUser(ctx context.Context, userID uint) ([]model.Transaction, error) {
	var txns []model.Transaction
	if err := r.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.user_id = ?", userID).
		Order("transactions.date DESC, transactions.id DESC").
		Find(&txns).Error; err != nil {
		return nil, wrapDB(err, "LIST_USER_TRANSACTIONS", "user_id", userID)
	}
	return txns, nil
}

func (r *transactionRepository) Update(ctx context.Context, id uint, changes model.TransactionChanges) (*model.Transaction, error) {
	var updated model.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if changes.IsIncome != nil {
			fields["is_income"] = *changes.IsIncome
		}
		if changes.Amount != nil {
			fields["amount"] = *changes.Amount
		}
		if changes.ClearDescription {
			fields["description"] = nil
		} else if changes.Description != nil {
			fields["description"] = *changes.Description
		}
		if changes.Date != nil {
			fields["date"] = *changes.Date
		}
		if changes.CategoryID != nil {
			fields["category_id"] = *changes.CategoryID
		}
		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&model.Transaction{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		if _, err := recalculateBalance(ctx, tx, updated.AccountID); err != nil {
			return err
		}
		return tx.First(&updated, id).Error
	})

	switch {
	case err == nil:
		return &updated, nil
	case isNotFound(err):
		return nil, apperrors.NewNotFoundError("transaction")
	default:
		return nil, wrapDB(err, "UPDATE_TRANSACTION", "transaction_id", id)
	}
}

func (r *transactionRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn model.Transaction
		if err := tx.First(&txn, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Transaction{}, id).Error; err != nil {
			return err
		}
		_, err := recalculateBalance(ctx, tx, txn.AccountID)
		return err
	})

	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return apperrors.NewNotFoundError("transaction")
	default:
		return wrapDB(err, "DELETE_TRANSACTION", "transaction_id", id)
	}
}
