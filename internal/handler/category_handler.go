package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"coinhub/internal/auth"
	"coinhub/internal/model"
	"coinhub/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents a new category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Color       string  `json:"color" validate:"required"`
}

// UpdateCategoryRequest lists the category fields that may change. An empty
// description clears it.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// CategoryResponse wraps one category.
type CategoryResponse struct {
	Message  string         `json:"message"`
	Category model.Category `json:"category"`
}

// CategoriesResponse wraps a list of categories.
type CategoriesResponse struct {
	Message    string           `json:"message"`
	Categories []model.Category `json:"categories"`
}

// CreateCategory godoc
// @Summary Create a category for the caller
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category data"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), callerID, service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, CategoryResponse{Message: "Category created successfully", Category: *category})
}

// ListCategories godoc
// @Summary List the caller's categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CategoriesResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	categories, err := h.categoryService.ListCategories(c.Request().Context(), callerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, CategoriesResponse{Message: "Categories retrieved successfully", Categories: categories})
}

// GetCategory godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "category")
	if err != nil {
		return err
	}
	category, err := h.categoryService.GetCategory(c.Request().Context(), callerID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, CategoryResponse{Message: "Category retrieved successfully", Category: *category})
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param request body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "category")
	if err != nil {
		return err
	}
	var req UpdateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), callerID, id, service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, CategoryResponse{Message: "Category updated successfully", Category: *category})
}

// DeleteCategory godoc
// @Summary Delete a category that no transaction uses
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id", "category")
	if err != nil {
		return err
	}
	if err := h.categoryService.DeleteCategory(c.Request().Context(), callerID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}
