package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
)

// AccountRepository defines account persistence operations.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id uint) (*model.Account, bool, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Account, error)
	Update(ctx context.Context, id uint, changes model.AccountChanges) (*model.Account, error)
	Delete(ctx context.Context, id uint) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts an account whose actual balance starts at its initial balance.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	account.ActualBalance = account.InitialBalance
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			// owner deleted while its token was still valid
			return apperrors.ErrUserNotFound
		}
		return wrapDB(err, "CREATE_ACCOUNT", "user_id", account.UserID)
	}
	return nil
}

// FindByID finds an account by ID.
func (r *accountRepository) FindByID(ctx context.Context, id uint) (*model.Account, bool, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapDB(err, "FIND_ACCOUNT", "account_id", id)
	}
	return &account, true, nil
}

// ListByUser lists the accounts owned by userID, oldest first.
func (r *accountRepository) ListByUser(ctx context.Context, userID uint) ([]model.Account, error) {
	var accounts []model.Account
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&accounts).Error; err != nil {
		return nil, wrapDB(err, "LIST_ACCOUNTS", "user_id", userID)
	}
	return accounts, nil
}

// Update applies changes; a new initial balance triggers a balance recalculation
// in the same transaction.
func (r *accountRepository) Update(ctx context.Context, id uint, changes model.AccountChanges) (*model.Account, error) {
	var updated model.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if changes.Name != nil {
			fields["name"] = *changes.Name
		}
		if changes.Currency != nil {
			fields["currency"] = *changes.Currency
		}
		if changes.InitialBalance != nil {
			fields["initial_balance"] = *changes.InitialBalance
		}
		if len(fields) > 0 {
			if err := tx.Model(&model.Account{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}
		if changes.InitialBalance != nil {
			if _, err := recalculateBalance(ctx, tx, id); err != nil {
				return err
			}
		}
		return tx.First(&updated, id).Error
	})

	switch {
	case err == nil:
		return &updated, nil
	case isNotFound(err):
		return nil, apperrors.NewNotFoundError("account")
	default:
		return nil, wrapDB(err, "UPDATE_ACCOUNT", "account_id", id)
	}
}

// Delete removes the account and its transactions.
func (r *accountRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&model.Transaction{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Account{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return apperrors.NewNotFoundError("account")
	default:
		return wrapDB(err, "DELETE_ACCOUNT", "account_id", id)
	}
}
