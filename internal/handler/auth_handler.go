package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"coinhub/internal/model"
	"coinhub/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Message     string           `json:"message"`
	AccessToken string           `json:"accessToken"`
	User        model.PublicUser `json:"user"`
}

// VerifiedUser is the identity echoed back by the verify endpoint.
type VerifiedUser struct {
	ID uint `json:"id"`
}

// VerifyResponse represents a token verification response.
type VerifyResponse struct {
	Message string       `json:"message"`
	User    VerifiedUser `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Message:     "User registered successfully",
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Message:     "Login successful",
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// Verify godoc
// @Summary Verify the bearer token and return its user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} VerifyResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	// the auth middleware has already enforced the "Bearer <token>" shape
	token := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")

	user, err := h.authService.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, VerifyResponse{
		Message: "Token is valid",
		User:    VerifiedUser{ID: user.ID},
	})
}
