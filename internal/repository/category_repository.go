package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
)

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id uint) (*model.Category, bool, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Category, error)
	Update(ctx context.Context, id uint, changes model.CategoryChanges) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperrors.ErrUserNotFound
		}
		return wrapDB(err, "CREATE_CATEGORY", "user_id", category.UserID)
	}
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, bool, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapDB(err, "FIND_CATEGORY", "category_id", id)
	}
	return &category, true, nil
}

func (r *categoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&categories).Error; err != nil {
		return nil, wrapDB(err, "LIST_CATEGORIES", "user_id", userID)
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, id uint, changes model.CategoryChanges) (*model.Category, error) {
	var updated model.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if changes.Name != nil {
			fields["name"] = *changes.Name
		}
		if changes.ClearDescription {
			fields["description"] = nil
		} else if changes.Description != nil {
			fields["description"] = *changes.Description
		}
		if changes.Color != nil {
			fields["color"] = *changes.Color
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&model.Category{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&updated, id).Error
	})

	switch {
	case err == nil:
		return &updated, nil
	case isNotFound(err):
		return nil, apperrors.NewNotFoundError("category")
	default:
		return nil, wrapDB(err, "UPDATE_CATEGORY", "category_id", id)
	}
}

// Delete refuses to remove a category referenced by any transaction.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&model.Transaction{}).Where("category_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return apperrors.ErrCategoryInUse
		}
		res := tx.Delete(&model.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return apperrors.NewNotFoundError("category")
	case errors.Is(err, apperrors.ErrCategoryInUse), errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.ErrCategoryInUse
	default:
		return wrapDB(err, "DELETE_CATEGORY", "category_id", id)
	}
}
