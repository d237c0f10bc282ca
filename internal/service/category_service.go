package service

import (
	"context"

	"coinhub/internal/auth"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
	"coinhub/internal/repository"
)

// CreateCategoryInput carries the fields of a new category.
type CreateCategoryInput struct {
	Name        string
	Description *string
	Color       string
}

// UpdateCategoryInput carries optional category changes.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Color       *string
}

// CategoryService handles category operations on behalf of an authenticated caller.
type CategoryService interface {
	CreateCategory(ctx context.Context, callerID uint, in CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, callerID, id uint) (*model.Category, error)
	ListCategories(ctx context.Context, callerID uint) ([]model.Category, error)
	UpdateCategory(ctx context.Context, callerID, id uint, in UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, callerID, id uint) error
}

type categoryService struct {
	repo      repository.CategoryRepository
	validator *FieldValidator
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo, validator: NewFieldValidator()}
}

func (s *categoryService) CreateCategory(ctx context.Context, callerID uint, in CreateCategoryInput) (*model.Category, error) {
	name, err := s.validator.CategoryName(in.Name)
	if err != nil {
		return nil, err
	}
	color, err := s.validator.Color(in.Color)
	if err != nil {
		return nil, err
	}
	desc, err := s.validator.Description(in.Description)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        name,
		Description: desc,
		Color:       color,
		UserID:      callerID,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, callerID, id uint) (*model.Category, error) {
	category, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("category")
	}
	if err := auth.RequireOwner(callerID, category.UserID, "categories"); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, callerID uint) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, callerID)
}

func (s *categoryService) UpdateCategory(ctx context.Context, callerID, id uint, in UpdateCategoryInput) (*model.Category, error) {
	if _, err := s.GetCategory(ctx, callerID, id); err != nil {
		return nil, err
	}

	var changes model.CategoryChanges
	if in.Name != nil {
		name, err := s.validator.CategoryName(*in.Name)
		if err != nil {
			return nil, err
		}
		changes.Name = &name
	}
	if in.Color != nil {
		color, err := s.validator.Color(*in.Color)
		if err != nil {
			return nil, err
		}
		changes.Color = &color
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

	return s.repo.Update(ctx, id, changes)
}

// DeleteCategory fails with ErrCategoryInUse while transactions reference it.
func (s *categoryService) DeleteCategory(ctx context.Context, callerID, id uint) error {
	if _, err := s.GetCategory(ctx, callerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
