//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"coinhub/internal/credential"
	"coinhub/internal/db"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("coinhub_test"),
		postgres.WithUsername("coinhub"),
		postgres.WithPassword("coinhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func TestPostgres(t *testing.T) {
	gdb := startPostgres(t)
	ctx := context.Background()

	users := NewUserRepository(gdb)
	accounts := NewAccountRepository(gdb)
	categories := NewCategoryRepository(gdb)
	transactions := NewTransactionRepository(gdb)

	alice := &model.User{
		Email:        credential.MustEmail("alice@example.com"),
		PasswordHash: "hash",
		FirstName:    "Alice",
		LastName:     "Martin",
	}
	require.NoError(t, users.CreateWithCategories(ctx, alice, model.DefaultCategoriesFor(0)))
	require.NotZero(t, alice.ID)

	t.Run("registration seeds categories", func(t *testing.T) {
		list, err := categories.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, list, len(model.DefaultCategories))
		for _, c := range list {
			assert.Equal(t, alice.ID, c.UserID)
		}
	})

	t.Run("email is unique", func(t *testing.T) {
		dup := &model.User{
			Email:        credential.MustEmail("alice@example.com"),
			PasswordHash: "hash",
			FirstName:    "Other",
			LastName:     "Alice",
		}
		err := users.CreateWithCategories(ctx, dup, model.DefaultCategoriesFor(0))
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

		list, err := categories.ListByUser(ctx, dup.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("balance follows transactions", func(t *testing.T) {
		account := &model.Account{
			Name:           "Compte courant",
			InitialBalance: decimal.RequireFromString("100.00"),
			ActualBalance:  decimal.RequireFromString("100.00"),
			Currency:       "EUR",
			UserID:         alice.ID,
		}
		require.NoError(t, accounts.Create(ctx, account))

		list, err := categories.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		categoryID := list[0].ID

		salary := &model.Transaction{IsIncome: true, Amount: decimal.RequireFromString("250.50"), Date: time.Now().UTC(), AccountID: account.ID, CategoryID: categoryID}
		rent := &model.Transaction{IsIncome: false, Amount: decimal.RequireFromString("40.25"), Date: time.Now().UTC(), AccountID: account.ID, CategoryID: categoryID}
		require.NoError(t, transactions.Create(ctx, salary))
		require.NoError(t, transactions.Create(ctx, rent))

		stored, found, err := accounts.FindByID(ctx, account.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "310.25", stored.ActualBalance.StringFixed(2))

		amount := decimal.RequireFromString("60.25")
		_, err = transactions.Update(ctx, rent.ID, model.TransactionChanges{Amount: &amount})
		require.NoError(t, err)
		require.NoError(t, transactions.Delete(ctx, salary.ID))

		stored, _, err = accounts.FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "39.75", stored.ActualBalance.StringFixed(2))

		err = categories.Delete(ctx, categoryID)
		assert.ErrorIs(t, err, apperrors.ErrCategoryInUse)
	})

	t.Run("deleting the user removes what it owns", func(t *testing.T) {
		require.NoError(t, users.Delete(ctx, alice.ID))

		_, found, err := users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.False(t, found)

		owned, err := accounts.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, owned)

		txns, err := transactions.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})
}
