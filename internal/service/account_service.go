package service

import (
	"context"

	"github.com/shopspring/decimal"

	"coinhub/internal/auth"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
	"coinhub/internal/repository"
)

// CreateAccountInput carries the fields of a new account.
type CreateAccountInput struct {
	Name           string
	InitialBalance decimal.Decimal
	Currency       string
}

// UpdateAccountInput carries optional account changes.
type UpdateAccountInput struct {
	Name           *string
	InitialBalance *decimal.Decimal
	Currency       *string
}

// AccountService handles account operations on behalf of an authenticated caller.
type AccountService interface {
	CreateAccount(ctx context.Context, callerID uint, in CreateAccountInput) (*model.Account, error)
	GetAccount(ctx context.Context, callerID, id uint) (*model.Account, error)
	ListAccounts(ctx context.Context, callerID uint) ([]model.Account, error)
	ListAccountsByUser(ctx context.Context, callerID, userID uint) ([]model.Account, error)
	UpdateAccount(ctx context.Context, callerID, id uint, in UpdateAccountInput) (*model.Account, error)
	DeleteAccount(ctx context.Context, callerID, id uint) error
	GetBalance(ctx context.Context, callerID, id uint) (decimal.Decimal, error)
}

type accountService struct {
	repo      repository.AccountRepository
	validator *FieldValidator
}

// NewAccountService creates a new account service.
func NewAccountService(repo repository.AccountRepository) AccountService {
	return &accountService{
		repo:      repo,
		validator: NewFieldValidator(),
	}
}

func (s *accountService) CreateAccount(ctx context.Context, callerID uint, in CreateAccountInput) (*model.Account, error) {
	name, err := s.validator.AccountName(in.Name)
	if err != nil {
		return nil, err
	}
	currency, err := s.validator.Currency(in.Currency)
	if err != nil {
		return nil, err
	}
	initial, err := s.validator.Balance(in.InitialBalance)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:           name,
		InitialBalance: initial,
		Currency:       currency,
		UserID:         callerID,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount resolves the account and checks the caller owns it.
func (s *accountService) GetAccount(ctx context.Context, callerID, id uint) (*model.Account, error) {
	account, found, err := s.repo.FindByID(ctx, id)
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

func (s *accountService) ListAccounts(ctx context.Context, callerID uint) ([]model.Account, error) {
	return s.repo.ListByUser(ctx, callerID)
}

func (s *accountService) ListAccountsByUser(ctx context.Context, callerID, userID uint) ([]model.Account, error) {
	if err := auth.RequireSelf(callerID, userID, "accounts"); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *accountService) UpdateAccount(ctx context.Context, callerID, id uint, in UpdateAccountInput) (*model.Account, error) {
	if _, err := s.GetAccount(ctx, callerID, id); err != nil {
		return nil, err
	}

	var changes model.AccountChanges
	if in.Name != nil {
		name, err := s.validator.AccountName(*in.Name)
		if err != nil {
			return nil, err
		}
		changes.Name = &name
	}
	if in.Currency != nil {
		currency, err := s.validator.Currency(*in.Currency)
		if err != nil {
			return nil, err
		}
		changes.Currency = &currency
	}
	if in.InitialBalance != nil {
		initial, err := s.validator.Balance(*in.InitialBalance)
		if err != nil {
			return nil, err
		}
		changes.InitialBalance = &initial
	}

	return s.repo.Update(ctx, id, changes)
}

func (s *accountService) DeleteAccount(ctx context.Context, callerID, id uint) error {
	if _, err := s.GetAccount(ctx, callerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// GetBalance returns the stored actual balance. Every write that affects it
// recomputes it in the same database transaction.
func (s *accountService) GetBalance(ctx context.Context, callerID, id uint) (decimal.Decimal, error) {
	account, err := s.GetAccount(ctx, callerID, id)
	if err != nil {
		return decimal.Zero, err
	}
	return account.ActualBalance, nil
}
