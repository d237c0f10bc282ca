package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coinhub/internal/auth"
	"coinhub/internal/credential"
	apperrors "coinhub/internal/errors"
	"coinhub/internal/model"
)

const testPassword = "Abcdef1!"

func storedUser(t *testing.T, id uint, email string) *model.User {
	t.Helper()
	password, err := credential.NewPassword(context.Background(), testPassword)
	require.NoError(t, err)
	return &model.User{
		ID:           id,
		Email:        credential.MustEmail(email),
		PasswordHash: password.Hash(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		opts          []AuthOption
		setupMock     func(*MockUserRepository, *MockTokenIssuer)
		expectedError error
		validation    bool
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Email: "Test@Example.com ", Password: testPassword, FirstName: "Ada", LastName: "Lovelace"},
			setupMock: func(m *MockUserRepository, tok *MockTokenIssuer) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, false, nil)
				m.On("CreateWithCategories", mock.Anything, mock.AnythingOfType("*model.User"),
					mock.MatchedBy(func(c []model.Category) bool { return len(c) == len(model.DefaultCategories) })).
					Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = 7 }).
					Return(nil)
				tok.On("Issue", uint(7)).Return("signed-token", nil)
			},
		},
		{
			name:  "registration without starter categories",
			input: RegisterInput{Email: "bare@example.com", Password: testPassword, FirstName: "Ada", LastName: "Lovelace"},
			opts:  []AuthOption{WithoutDefaultCategories()},
			setupMock: func(m *MockUserRepository, tok *MockTokenIssuer) {
				m.On("FindByEmail", mock.Anything, "bare@example.com").Return(nil, false, nil)
				m.On("CreateWithCategories", mock.Anything, mock.AnythingOfType("*model.User"),
					mock.MatchedBy(func(c []model.Category) bool { return len(c) == 0 })).
					Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = 7 }).
					Return(nil)
				tok.On("Issue", uint(7)).Return("signed-token", nil)
			},
		},
		{
			name:  "email already taken",
			input: RegisterInput{Email: "existing@example.com", Password: testPassword, FirstName: "Ada", LastName: "Lovelace"},
			setupMock: func(m *MockUserRepository, _ *MockTokenIssuer) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{ID: 1}, true, nil)
			},
			expectedError: apperrors.ErrEmailAlreadyExists,
		},
		{
			name:  "email taken between check and insert",
			input: RegisterInput{Email: "race@example.com", Password: testPassword, FirstName: "Ada", LastName: "Lovelace"},
			setupMock: func(m *MockUserRepository, _ *MockTokenIssuer) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, false, nil)
				m.On("CreateWithCategories", mock.Anything, mock.Anything, mock.Anything).Return(apperrors.ErrEmailAlreadyExists)
			},
			expectedError: apperrors.ErrEmailAlreadyExists,
		},
		{
			name:       "invalid email",
			input:      RegisterInput{Email: "not-an-email", Password: testPassword, FirstName: "Ada", LastName: "Lovelace"},
			setupMock:  func(*MockUserRepository, *MockTokenIssuer) {},
			validation: true,
		},
		{
			name:       "weak password",
			input:      RegisterInput{Email: "weak@example.com", Password: "password", FirstName: "Ada", LastName: "Lovelace"},
			setupMock:  func(*MockUserRepository, *MockTokenIssuer) {},
			validation: true,
		},
		{
			name:       "missing first name",
			input:      RegisterInput{Email: "noname@example.com", Password: testPassword, FirstName: "  ", LastName: "Lovelace"},
			setupMock:  func(*MockUserRepository, *MockTokenIssuer) {},
			validation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokens := new(MockTokenIssuer)
			tt.setupMock(mockRepo, mockTokens)

			svc := NewAuthService(mockRepo, mockTokens, tt.opts...)
			result, err := svc.Register(context.Background(), tt.input)

			switch {
			case tt.validation:
				var validationErr *apperrors.ValidationError
				assert.ErrorAs(t, err, &validationErr)
				assert.Nil(t, result)
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			default:
				require.NoError(t, err)
				assert.Equal(t, "signed-token", result.AccessToken)
				assert.Equal(t, uint(7), result.User.ID)
				assert.Equal(t, credential.MustEmail(tt.input.Email), result.User.Email)
			}

			mockRepo.AssertExpectations(t)
			mockTokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_StoresArgon2Hash(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenIssuer)

	var created *model.User
	mockRepo.On("FindByEmail", mock.Anything, "hash@example.com").Return(nil, false, nil)
	mockRepo.On("CreateWithCategories", mock.Anything, mock.AnythingOfType("*model.User"), mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.User)
			created.ID = 3
		}).
		Return(nil)
	mockTokens.On("Issue", uint(3)).Return("t", nil)

	svc := NewAuthService(mockRepo, mockTokens)
	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "hash@example.com", Password: testPassword, FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotContains(t, created.PasswordHash, testPassword)
	assert.Contains(t, created.PasswordHash, "$argon2id$")
	password, err := created.Password()
	require.NoError(t, err)
	assert.True(t, password.Verify(context.Background(), testPassword))
}

func TestAuthService_Login(t *testing.T) {
	user := storedUser(t, 5, "test@example.com")
	dbErr := errors.New("connection refused")

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenIssuer)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "TEST@example.com",
			password: testPassword,
			setupMock: func(m *MockUserRepository, tok *MockTokenIssuer) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(user, true, nil)
				tok.On("Issue", uint(5)).Return("signed-token", nil)
			},
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "Wrong-pass1",
			setupMock: func(m *MockUserRepository, _ *MockTokenIssuer) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(user, true, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: testPassword,
			setupMock: func(m *MockUserRepository, _ *MockTokenIssuer) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, false, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:          "malformed email skips lookup",
			email:         "not-an-email",
			password:      testPassword,
			setupMock:     func(*MockUserRepository, *MockTokenIssuer) {},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "storage failure is not reported as bad credentials",
			email:    "test@example.com",
			password: testPassword,
			setupMock: func(m *MockUserRepository, _ *MockTokenIssuer) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, false, dbErr)
			},
			expectedError: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokens := new(MockTokenIssuer)
			tt.setupMock(mockRepo, mockTokens)

			svc := NewAuthService(mockRepo, mockTokens)
			result, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
				if tt.expectedError != apperrors.ErrInvalidCredentials {
					assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "signed-token", result.AccessToken)
				assert.Equal(t, uint(5), result.User.ID)
				assert.Equal(t, "test@example.com", result.User.Email)
			}

			mockRepo.AssertExpectations(t)
			mockTokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_ReportsOutcomes(t *testing.T) {
	user := storedUser(t, 5, "test@example.com")
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenIssuer)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, true, nil)
	mockTokens.On("Issue", uint(5)).Return("signed-token", nil)

	var outcomes []string
	svc := NewAuthService(mockRepo, mockTokens, WithAuthObserver(func(op, outcome string) {
		outcomes = append(outcomes, op+":"+outcome)
	}))

	_, err := svc.Login(context.Background(), "test@example.com", testPassword)
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "test@example.com", "Wrong-pass1")
	require.Error(t, err)

	assert.Equal(t, []string{
		"login:" + AuthOutcomeSuccess,
		"login:" + AuthOutcomeInvalidCredentials,
	}, outcomes)
}

func TestAuthService_Login_CancelledContext(t *testing.T) {
	user := storedUser(t, 5, "test@example.com")
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewAuthService(mockRepo, new(MockTokenIssuer))
	_, err := svc.Login(ctx, "test@example.com", testPassword)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthService_VerifyToken(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository, *MockTokenIssuer)
		expectedError error
	}{
		{
			name: "valid token for existing user",
			setupMock: func(m *MockUserRepository, tok *MockTokenIssuer) {
				tok.On("Verify", "tok").Return(&auth.Claims{UserID: 9}, nil)
				m.On("FindByID", mock.Anything, uint(9)).Return(&model.User{ID: 9}, true, nil)
			},
		},
		{
			name: "expired token",
			setupMock: func(_ *MockUserRepository, tok *MockTokenIssuer) {
				tok.On("Verify", "tok").Return(nil, apperrors.ErrTokenExpired)
			},
			expectedError: apperrors.ErrTokenExpired,
		},
		{
			name: "user deleted after issue",
			setupMock: func(m *MockUserRepository, tok *MockTokenIssuer) {
				tok.On("Verify", "tok").Return(&auth.Claims{UserID: 9}, nil)
				m.On("FindByID", mock.Anything, uint(9)).Return(nil, false, nil)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokens := new(MockTokenIssuer)
			tt.setupMock(mockRepo, mockTokens)

			svc := NewAuthService(mockRepo, mockTokens)
			user, err := svc.VerifyToken(context.Background(), "tok")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(9), user.ID)
			}

			mockRepo.AssertExpectations(t)
			mockTokens.AssertExpectations(t)
		})
	}
}
