package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coinhub/internal/credential"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
)

// UserRepository defines persistence operations.
// Lookups return found=false with a nil error when the user does not exist.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	CreateWithCategories(ctx context.Context, user *model.User, categories []model.Category) error
	FindByID(ctx context.Context, id uint) (*model.User, bool, error)
	FindByEmail(ctx context.Context, email credential.Email) (*model.User, bool, error)
	Update(ctx context.Context, id uint, changes model.UserChanges) (*model.User, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.CreateWithCategories(ctx, user, nil)
}

// CreateWithCategories inserts the user and its starter categories atomically.
// A taken email yields apperrors.ErrEmailAlreadyExists and nothing is written.
func (r *userRepository) CreateWithCategories(ctx context.Context, user *model.User, categories []model.Category) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrEmailAlreadyExists
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if len(categories) == 0 {
			return nil
		}
		for i := range categories {
			categories[i].UserID = user.ID
		}
		return tx.Create(&categories).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrEmailAlreadyExists), errors.Is(err, gorm.ErrDuplicatedKey):
		// unique index catches concurrent registrations that passed the count
		return apperrors.ErrEmailAlreadyExists
	default:
		return wrapDB(err, "CREATE_USER", "email", user.Email.String())
	}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, bool, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapDB(err, "FIND_USER", "user_id", id)
	}
	return &user, true, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email credential.Email) (*model.User, bool, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapDB(err, "FIND_USER_BY_EMAIL")
	}
	return &user, true, nil
}

// Update applies changes inside a transaction, re-checking email uniqueness.
func (r *userRepository) Update(ctx context.Context, id uint, changes model.UserChanges) (*model.User, error) {
	var updated model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if changes.Email != nil && !changes.Email.Equal(updated.Email) {
			var count int64
			if err := tx.Model(&model.User{}).
				Where("email = ? AND id <> ?", *changes.Email, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperrors.ErrEmailAlreadyExists
			}
			fields["email"] = *changes.Email
		}
		if changes.PasswordHash != nil {
			fields["password_hash"] = *changes.PasswordHash
		}
		if changes.FirstName != nil {
			fields["first_name"] = *changes.FirstName
		}
		if changes.LastName != nil {
			fields["last_name"] = *changes.LastName
		}
		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&updated, id).Error
	})

	switch {
	case err == nil:
		return &updated, nil
	case isNotFound(err):
		return nil, apperrors.NewNotFoundError("user")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, apperrors.ErrEmailAlreadyExists
	default:
		return nil, wrapDB(err, "UPDATE_USER", "user_id", id)
	}
}

// Delete removes the user and everything it owns. Transactions go first
// because categories refuse deletion while referenced.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			return err
		}

		accountIDs := tx.Model(&model.Account{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("account_id IN (?)", accountIDs).Delete(&model.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Account{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})

	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return apperrors.NewNotFoundError("user")
	default:
		return wrapDB(err, "DELETE_USER", "user_id", id)
	}
}
