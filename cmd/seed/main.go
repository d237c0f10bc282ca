package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"coinhub/internal/auth"
	"coinhub/internal/config"
	"coinhub/internal/db"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/logging"
	"coinhub/internal/repository"
	"coinhub/internal/service"
)

// seedAccount is one demo account and the movements recorded on it.
type seedAccount struct {
	Name         string
	Currency     string
	Initial      string
	Transactions []seedTransaction
}

type seedTransaction struct {
	Category string
	IsIncome bool
	Amount   string
	Note     string
	DaysAgo  int
}

var demoAccounts = []seedAccount{
	{
		Name: "Compte courant", Currency: "EUR", Initial: "1200.00",
		Transactions: []seedTransaction{
			{Category: "Autre", IsIncome: true, Amount: "2450.00", Note: "Salaire mensuel", DaysAgo: 20},
			{Category: "Logement", Amount: "850.00", Note: "Loyer", DaysAgo: 18},
			{Category: "Alimentation", Amount: "64.35", Note: "Courses", DaysAgo: 6},
			{Category: "Transport", Amount: "75.00", Note: "Abonnement", DaysAgo: 3},
		},
	},
	{
		Name: "Livret epargne", Currency: "EUR", Initial: "5000.00",
		Transactions: []seedTransaction{
			{Category: "Épargne", IsIncome: true, Amount: "200.00", Note: "Virement mensuel", DaysAgo: 15},
		},
	},
}

func main() {
	if err := newSeedCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	var (
		configPath string
		email      string
		password   string
	)

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Create a demo user with accounts and transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logging.SetDefault("coinhub-seed", "dev", cfg.LogFormat, cfg.LogLevel)

			if err := seed(cmd.Context(), cfg, email, password); err != nil {
				slog.Error("seed failed", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&email, "email", "demo@coinhub.local", "demo user email")
	cmd.Flags().StringVar(&password, "password", "Demo-pass1!", "demo user password")
	config.BindFlags(cmd.Flags())
	return cmd
}

func seed(ctx context.Context, cfg *config.Config, email, password string) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = db.Close(gormDB) }()
	slog.Info("connected to database", "driver", cfg.DBDriver)

	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	userRepo := repository.NewUserRepository(gormDB)
	accountRepo := repository.NewAccountRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)

	authService := service.NewAuthService(userRepo, tokens)
	accountService := service.NewAccountService(accountRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	transactionService := service.NewTransactionService(transactionRepo, accountRepo, categoryRepo)

	userID, created, err := demoUser(ctx, authService, email, password)
	if err != nil {
		return err
	}
	if !created {
		existing, err := accountService.ListAccounts(ctx, userID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			slog.Info("demo user already seeded", "email", email, "accounts", len(existing))
			return nil
		}
	}

	categories, err := categoryService.ListCategories(ctx, userID)
	if err != nil {
		return err
	}
	byName := make(map[string]uint, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}

	accounts, txns := 0, 0
	now := time.Now().UTC()
	for _, sa := range demoAccounts {
		account, err := accountService.CreateAccount(ctx, userID, service.CreateAccountInput{
			Name:           sa.Name,
			InitialBalance: decimal.RequireFromString(sa.Initial),
			Currency:       sa.Currency,
		})
		if err != nil {
			return fmt.Errorf("create account %q: %w", sa.Name, err)
		}
		accounts++

		for _, st := range sa.Transactions {
			categoryID, ok := byName[st.Category]
			if !ok {
				slog.Warn("skipping transaction with unknown category", "category", st.Category)
				continue
			}
			note := st.Note
			if _, err := transactionService.CreateTransaction(ctx, userID, service.CreateTransactionInput{
				IsIncome:    st.IsIncome,
				Amount:      decimal.RequireFromString(st.Amount),
				Description: &note,
				Date:        now.AddDate(0, 0, -st.DaysAgo),
				AccountID:   account.ID,
				CategoryID:  categoryID,
			}); err != nil {
				return fmt.Errorf("create transaction on %q: %w", sa.Name, err)
			}
			txns++
		}
	}

	slog.Info("seed completed",
		"email", email,
		"user_created", created,
		"accounts", accounts,
		"transactions", txns,
	)
	return nil
}

// demoUser registers the demo user, or logs in when it already exists.
func demoUser(ctx context.Context, authService service.AuthService, email, password string) (uint, bool, error) {
	result, err := authService.Register(ctx, service.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err == nil {
		return result.User.ID, true, nil
	}
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		return 0, false, fmt.Errorf("register demo user: %w", err)
	}

	result, err = authService.Login(ctx, email, password)
	if err != nil {
		return 0, false, fmt.Errorf("login demo user: %w", err)
	}
	return result.User.ID, false, nil
}
