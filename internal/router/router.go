package router

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"coinhub/internal/auth"
	"coinhub/internal/config"
	"coinhub/internal/handler"
	"coinhub/internal/logging"
	"coinhub/internal/metrics"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Account     *handler.AccountHandler
	Category    *handler.CategoryHandler
	Transaction *handler.TransactionHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	m *metrics.Metrics,
	verifier auth.TokenVerifier,
	h Handlers,
) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(logging.RequestLogger(slog.Default()))
	if m != nil {
		e.Use(m.Middleware())
	}

	e.Validator = NewValidator()
	// debug mode adds the raw error to generic error bodies
	e.Debug = !cfg.IsProduction()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	mwCfg := auth.MiddlewareConfig{Verifier: verifier}
	if m != nil {
		mwCfg.Observe = func(outcome string) { m.ObserveAuth("bearer", outcome) }
	}
	secured := api.Group("", auth.Middleware(mwCfg))

	secured.GET("/auth/verify", h.Auth.Verify)

	secured.GET("/users/me", h.User.Me)
	secured.GET("/users/:id", h.User.GetUser)
	secured.PUT("/users/:id", h.User.UpdateUser)
	secured.DELETE("/users/:id", h.User.DeleteUser)

	secured.POST("/accounts", h.Account.CreateAccount)
	secured.GET("/accounts", h.Account.ListAccounts)
	secured.GET("/accounts/user/:userId", h.Account.ListAccountsByUser)
	secured.GET("/accounts/:id", h.Account.GetAccount)
	secured.PUT("/accounts/:id", h.Account.UpdateAccount)
	secured.DELETE("/accounts/:id", h.Account.DeleteAccount)
	secured.GET("/accounts/:id/balance", h.Account.GetBalance)

	secured.POST("/categories", h.Category.CreateCategory)
	secured.GET("/categories", h.Category.ListCategories)
	secured.GET("/categories/:id", h.Category.GetCategory)
	secured.PUT("/categories/:id", h.Category.UpdateCategory)
	secured.DELETE("/categories/:id", h.Category.DeleteCategory)

	secured.POST("/transactions", h.Transaction.CreateTransaction)
	secured.GET("/transactions", h.Transaction.ListTransactions)
	secured.GET("/transactions/account/:accountId", h.Transaction.ListTransactionsByAccount)
	secured.GET("/transactions/:id", h.Transaction.GetTransaction)
	secured.PUT("/transactions/:id", h.Transaction.UpdateTransaction)
	secured.DELETE("/transactions/:id", h.Transaction.DeleteTransaction)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports field errors under their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
