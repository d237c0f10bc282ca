package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"coinhub/internal/auth"
	"coinhub/internal/model"
	"coinhub/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest lists the profile fields that may change.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UserResponse wraps a user.
type UserResponse struct {
	Message string         `json:"message"`
	User    model.SafeUser `json:"user"`
}

// Me godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.svc.GetUser(c.Request().Context(), callerID, callerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{Message: "User retrieved successfully", User: *user})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), callerID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{Message: "User retrieved successfully", User: *user})
}

// UpdateUser godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), callerID, id, service.UpdateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{Message: "User updated successfully", User: *user})
}

// DeleteUser godoc
// @Summary Delete own account and all owned data
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), callerID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
