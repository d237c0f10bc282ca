package router

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"coinhub/internal/credential"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
)

// memStore backs the in-memory repositories behind the router suite.
type memStore struct {
	mu           sync.Mutex
	nextID       uint
	users        map[uint]model.User
	accounts     map[uint]model.Account
	categories   map[uint]model.Category
	transactions map[uint]model.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[uint]model.User{},
		accounts:     map[uint]model.Account{},
		categories:   map[uint]model.Category{},
		transactions: map[uint]model.Transaction{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) balance(accountID uint) decimal.Decimal {
	account := s.accounts[accountID]
	total := account.InitialBalance
	for _, t := range s.transactions {
		if t.AccountID == accountID {
			total = total.Add(t.Signed())
		}
	}
	account.ActualBalance = total
	s.accounts[accountID] = account
	return total
}

type memUsers struct{ *memStore }

func (r memUsers) Create(ctx context.Context, user *model.User) error {
	return r.CreateWithCategories(ctx, user, nil)
}

func (r memUsers) CreateWithCategories(_ context.Context, user *model.User, categories []model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email.Equal(user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = r.id()
	r.users[user.ID] = *user
	for i := range categories {
		categories[i].ID = r.id()
		categories[i].UserID = user.ID
		r.categories[categories[i].ID] = categories[i]
	}
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uint) (*model.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (r memUsers) FindByEmail(_ context.Context, email credential.Email) (*model.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email.Equal(email) {
			return &u, true, nil
		}
	}
	return nil, false, nil
}

func (r memUsers) Update(_ context.Context, id uint, changes model.UserChanges) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user")
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	if changes.PasswordHash != nil {
		u.PasswordHash = *changes.PasswordHash
	}
	if changes.FirstName != nil {
		u.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		u.LastName = *changes.LastName
	}
	r.users[id] = u
	return &u, nil
}

func (r memUsers) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.NewNotFoundError("user")
	}
	for aid, a := range r.accounts {
		if a.UserID == id {
			for tid, t := range r.transactions {
				if t.AccountID == aid {
					delete(r.transactions, tid)
				}
			}
			delete(r.accounts, aid)
		}
	}
	for cid, c := range r.categories {
		if c.UserID == id {
			delete(r.categories, cid)
		}
	}
	delete(r.users, id)
	return nil
}

type memAccounts struct{ *memStore }

func (r memAccounts) Create(_ context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.ID = r.id()
	account.ActualBalance = account.InitialBalance
	r.accounts[account.ID] = *account
	return nil
}

func (r memAccounts) FindByID(_ context.Context, id uint) (*model.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, false, nil
	}
	return &a, true, nil
}

func (r memAccounts) ListByUser(_ context.Context, userID uint) ([]model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Account{}
	for _, a := range r.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAccounts) Update(_ context.Context, id uint, changes model.AccountChanges) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("account")
	}
	if changes.Name != nil {
		a.Name = *changes.Name
	}
	if changes.Currency != nil {
		a.Currency = *changes.Currency
	}
	if changes.InitialBalance != nil {
		a.InitialBalance = *changes.InitialBalance
	}
	r.accounts[id] = a
	r.balance(id)
	a = r.accounts[id]
	return &a, nil
}

func (r memAccounts) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return apperrors.NewNotFoundError("account")
	}
	for tid, t := range r.transactions {
		if t.AccountID == id {
			delete(r.transactions, tid)
		}
	}
	delete(r.accounts, id)
	return nil
}

type memCategories struct{ *memStore }

func (r memCategories) Create(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = r.id()
	r.categories[category.ID] = *category
	return nil
}

func (r memCategories) FindByID(_ context.Context, id uint) (*model.Category, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, false, nil
	}
	return &c, true, nil
}

func (r memCategories) ListByUser(_ context.Context, userID uint) ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Category{}
	for _, c := range r.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCategories) Update(_ context.Context, id uint, changes model.CategoryChanges) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("category")
	}
	if changes.Name != nil {
		c.Name = *changes.Name
	}
	if changes.ClearDescription {
		c.Description = nil
	} else if changes.Description != nil {
		c.Description = changes.Description
	}
	if changes.Color != nil {
		c.Color = *changes.Color
	}
	r.categories[id] = c
	return &c, nil
}

func (r memCategories) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.CategoryID == id {
			return apperrors.ErrCategoryInUse
		}
	}
	if _, ok := r.categories[id]; !ok {
		return apperrors.NewNotFoundError("category")
	}
	delete(r.categories, id)
	return nil
}

type memTransactions struct{ *memStore }

func (r memTransactions) Create(_ context.Context, txn *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[txn.AccountID]; !ok {
		return apperrors.NewNotFoundError("account")
	}
	txn.ID = r.id()
	r.transactions[txn.ID] = *txn
	r.balance(txn.AccountID)
	return nil
}

func (r memTransactions) FindByID(_ context.Context, id uint) (*model.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, false, nil
	}
	return &t, true, nil
}

func (r memTransactions) list(keep func(model.Transaction) bool) []model.Transaction {
	out := []model.Transaction{}
	for _, t := range r.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memTransactions) ListByAccount(_ context.Context, accountID uint) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(t model.Transaction) bool { return t.AccountID == accountID }), nil
}

func (r memTransactions) ListByUser(_ context.Context, userID uint) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(t model.Transaction) bool { return r.accounts[t.AccountID].UserID == userID }), nil
}

func (r memTransactions) Update(_ context.Context, id uint, changes model.TransactionChanges) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction")
	}
	if changes.IsIncome != nil {
		t.IsIncome = *changes.IsIncome
	}
	if changes.Amount != nil {
		t.Amount = *changes.Amount
	}
	if changes.ClearDescription {
		t.Description = nil
	} else if changes.Description != nil {
		t.Description = changes.Description
	}
	if changes.Date != nil {
		t.Date = *changes.Date
	}
	if changes.CategoryID != nil {
		t.CategoryID = *changes.CategoryID
	}
	r.transactions[id] = t
	r.balance(t.AccountID)
	return &t, nil
}

func (r memTransactions) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return apperrors.NewNotFoundError("transaction")
	}
	delete(r.transactions, id)
	r.balance(t.AccountID)
	return nil
}
