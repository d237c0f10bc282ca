package service

import (
	"context"
	"time"

	"coinhub/internal/auth"
	"coinhub/internal/cache"
	"coinhub/internal/credential"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
	"coinhub/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UpdateUserInput carries optional profile changes; nil leaves a field alone.
type UpdateUserInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

// UserService exposes profile operations. Every method acts on the caller only.
type UserService interface {
	GetUser(ctx context.Context, callerID, id uint) (*model.SafeUser, error)
	UpdateUser(ctx context.Context, callerID, id uint, in UpdateUserInput) (*model.SafeUser, error)
	DeleteUser(ctx context.Context, callerID, id uint) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) GetUser(ctx context.Context, callerID, id uint) (*model.SafeUser, error) {
	if err := auth.RequireSelf(callerID, id, "profile"); err != nil {
		return nil, err
	}

	var cached model.SafeUser
	if s.cache.GetJSON(ctx, cache.UserKey(id), &cached) {
		return &cached, nil
	}

	user, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("user")
	}

	safe := user.Safe()
	s.cache.SetJSON(ctx, cache.UserKey(id), safe, userCacheTTL)
	return &safe, nil
}

func (s *userService) UpdateUser(ctx context.Context, callerID, id uint, in UpdateUserInput) (*model.SafeUser, error) {
	if err := auth.RequireSelf(callerID, id, "profile"); err != nil {
		return nil, err
	}

	var changes model.UserChanges
	if in.Email != nil {
		email, err := credential.NewEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		changes.Email = &email
	}
	if in.FirstName != nil {
		name, err := credential.NewPersonName("firstName", *in.FirstName)
		if err != nil {
			return nil, err
		}
		changes.FirstName = &name
	}
	if in.LastName != nil {
		name, err := credential.NewPersonName("lastName", *in.LastName)
		if err != nil {
			return nil, err
		}
		changes.LastName = &name
	}
	if in.Password != nil {
		password, err := credential.NewPassword(ctx, *in.Password)
		if err != nil {
			return nil, err
		}
		hash := password.Hash()
		changes.PasswordHash = &hash
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, cache.UserKey(id))

	safe := updated.Safe()
	return &safe, nil
}

func (s *userService) DeleteUser(ctx context.Context, callerID, id uint) error {
	if err := auth.RequireSelf(callerID, id, "profile"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cache.UserKey(id))
	return nil
}
