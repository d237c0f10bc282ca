package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"coinhub/internal/auth"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
	"coinhub/internal/repository"
)

// CreateTransactionInput carries the fields of a new transaction.
type CreateTransactionInput struct {
	IsIncome    bool
	Amount      decimal.Decimal
	Description *string
	Date        time.Time
	AccountID   uint
	CategoryID  uint
}

// UpdateTransactionInput carries optional transaction changes. The account
// of a transaction cannot change.
type UpdateTransactionInput struct {
	IsIncome    *bool
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
	CategoryID  *uint
}

// TransactionService handles transactions on behalf of an authenticated caller.
// Ownership of a transaction is the ownership of its account.
type TransactionService interface {
	CreateTransaction(ctx context.Context, callerID uint, in CreateTransactionInput) (*model.Transaction, error)
	GetTransaction(ctx context.Context, callerID, id uint) (*model.Transaction, error)
	ListTransactions(ctx context.Context, callerID uint) ([]model.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, callerID, accountID uint) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, callerID, id uint, in UpdateTransactionInput) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, callerID, id uint) error
}

type transactionService struct {
	transactions repository.TransactionRepository
	accounts     repository.AccountRepository
	categories   repository.CategoryRepository
	validator    *FieldValidator
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	transactions repository.TransactionRepository,
	accounts repository.AccountRepository,
	categories repository.CategoryRepository,
) TransactionService {
	return &transactionService{
		transactions: transactions,
		accounts:     accounts,
		categories:   categories,
		validator:    NewFieldValidator(),
	}
}

func (s *transactionService) CreateTransaction(ctx context.Context, callerID uint, in CreateTransactionInput) (*model.Transaction, error) {
	if _, err := s.ownedAccount(ctx, callerID, in.AccountID); err != nil {
		return nil, err
	}
	if err := s.ownedCategory(ctx, callerID, in.CategoryID); err != nil {
		return nil, err
	}

	amount, err := s.validator.Amount(in.Amount)
	if err != nil {
		return nil, err
	}
	desc, err := s.validator.Description(in.Description)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, apperrors.NewValidationError("date", "Date is required")
	}

	txn := &model.Transaction{
		IsIncome:    in.IsIncome,
		Amount:      amount,
		Description: desc,
		Date:        in.Date,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, callerID, id uint) (*model.Transaction, error) {
	txn, found, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("transaction")
	}

	account, found, err := s.accounts.FindByID(ctx, txn.AccountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("transaction")
	}
	if err := auth.RequireOwner(callerID, account.UserID, "transactions"); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, callerID uint) ([]model.Transaction, error) {
	return s.transactions.ListByUser(ctx, callerID)
}

func (s *transactionService) ListTransactionsByAccount(ctx context.Context, callerID, accountID uint) ([]model.Transaction, error) {
	if _, err := s.ownedAccount(ctx, callerID, accountID); err != nil {
		return nil, err
	}
	return s.transactions.ListByAccount(ctx, accountID)
}

func (s *transactionService) UpdateTransaction(ctx context.Context, callerID, id uint, in UpdateTransactionInput) (*model.Transaction, error) {
	if _, err := s.GetTransaction(ctx, callerID, id); err != nil {
		return nil, err
	}

	var changes model.TransactionChanges
	changes.IsIncome = in.IsIncome
	if in.Amount != nil {
		amount, err := s.validator.Amount(*in.Amount)
		if err != nil {
			return nil, err
		}
		changes.Amount = &amount
	}
	if in.Description != nil {
		desc, err := s.validator.Description(in.Description)
		if err != nil {
			return nil, err
		}
		if desc == nil {
			changes.ClearDescription = true
		} else {
			changes.Description = desc
		}
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return nil, apperrors.NewValidationError("date", "Date is required")
		}
		changes.Date = in.Date
	}
	if in.CategoryID != nil {
		if err := s.ownedCategory(ctx, callerID, *in.CategoryID); err != nil {
			return nil, err
		}
		changes.CategoryID = in.CategoryID
	}

	return s.transactions.Update(ctx, id, changes)
}

func (s *transactionService) DeleteTransaction(ctx context.Context, callerID, id uint) error {
	if _, err := s.GetTransaction(ctx, callerID, id); err != nil {
		return err
	}
	return s.transactions.Delete(ctx, id)
}

func (s *transactionService) ownedAccount(ctx context.Context, callerID, accountID uint) (*model.Account, error) {
	account, found, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("account")
	}
	if err := auth.RequireOwner(callerID, account.UserID, "accounts"); err != nil {
		return nil, err
	}
	return account, nil
}

// ownedCategory rejects categories of other users so a transaction never
// links two owners.
func (s *transactionService) ownedCategory(ctx context.Context, callerID, categoryID uint) error {
	category, found, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFoundError("category")
	}
	return auth.RequireOwner(callerID, category.UserID, "categories")
}
