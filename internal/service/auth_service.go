package service

import (
	"context"
	"errors"
	"fmt"

	"coinhub/internal/auth"
	"coinhub/internal/credential"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
	"coinhub/internal/repository"
)

// Auth outcomes reported to an AuthObserver.
const (
	AuthOutcomeSuccess            = "success"
	AuthOutcomeInvalidCredentials = "invalid_credentials"
	AuthOutcomeValidation         = "validation_error"
	AuthOutcomeConflict           = "email_taken"
	AuthOutcomeError              = "error"
)

// TokenIssuer issues and checks access tokens.
type TokenIssuer interface {
	Issue(userID uint) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// AuthObserver receives one outcome per login or register call.
type AuthObserver func(operation, outcome string)

// RegisterInput carries the raw registration fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is what login and register hand back to the client.
type AuthResult struct {
	AccessToken string
	User        model.PublicUser
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	VerifyToken(ctx context.Context, token string) (*model.User, error)
}

// AuthOption customises the auth service.
type AuthOption func(*authService)

// WithoutDefaultCategories disables the starter catalogue on register.
func WithoutDefaultCategories() AuthOption {
	return func(s *authService) {
		s.seedCategories = false
	}
}

// WithAuthObserver reports login and register outcomes, e.g. to metrics.
func WithAuthObserver(observe AuthObserver) AuthOption {
	return func(s *authService) {
		s.observe = observe
	}
}

type authService struct {
	users          repository.UserRepository
	tokens         TokenIssuer
	seedCategories bool
	observe        AuthObserver
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, opts ...AuthOption) AuthService {
	s := &authService{
		users:          users,
		tokens:         tokens,
		seedCategories: true,
		observe:        func(string, string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates by email and password. A malformed email, an unknown
// user and a wrong password are indistinguishable to the caller, and an
// unknown user still pays for one password verification. Storage failures
// are returned as-is.
func (s *authService) Login(ctx context.Context, emailText, passwordText string) (*AuthResult, error) {
	email, emailErr := credential.NewEmail(emailText)

	var (
		user  *model.User
		found bool
	)
	if emailErr == nil {
		var err error
		user, found, err = s.users.FindByEmail(ctx, email)
		if err != nil {
			s.observe("login", AuthOutcomeError)
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	stored := credential.DecoyPassword()
	if found {
		if p, err := user.Password(); err == nil {
			stored = p
		} else {
			found = false
		}
	}

	matched := stored.Verify(ctx, passwordText)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !found || !matched {
		s.observe("login", AuthOutcomeInvalidCredentials)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.observe("login", AuthOutcomeError)
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.observe("login", AuthOutcomeSuccess)
	return &AuthResult{AccessToken: token, User: user.Public()}, nil
}

// Register validates input, stores the user with its starter categories and
// issues a token the same way Login does.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := s.buildUser(ctx, in)
	if err != nil {
		s.observe("register", outcomeFor(err))
		return nil, err
	}

	var starter []model.Category
	if s.seedCategories {
		starter = model.DefaultCategoriesFor(0)
	}
	if err := s.users.CreateWithCategories(ctx, user, starter); err != nil {
		s.observe("register", outcomeFor(err))
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.observe("register", AuthOutcomeError)
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.observe("register", AuthOutcomeSuccess)
	return &AuthResult{AccessToken: token, User: user.Public()}, nil
}

func (s *authService) buildUser(ctx context.Context, in RegisterInput) (*model.User, error) {
	email, err := credential.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	firstName, err := credential.NewPersonName("firstName", in.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := credential.NewPersonName("lastName", in.LastName)
	if err != nil {
		return nil, err
	}
	if err := credential.ValidatePasswordStrength(in.Password); err != nil {
		return nil, err
	}

	// skip the hashing cost for an email we already know is taken
	if _, found, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	} else if found {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	password, err := credential.NewPassword(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	return &model.User{
		Email:        email,
		PasswordHash: password.Hash(),
		FirstName:    firstName,
		LastName:     lastName,
	}, nil
}

// VerifyToken checks the token and reloads its user.
func (s *authService) VerifyToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, found, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if !found {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func outcomeFor(err error) string {
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return AuthOutcomeValidation
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return AuthOutcomeConflict
	default:
		return AuthOutcomeError
	}
}
