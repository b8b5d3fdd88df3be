package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/password"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User, signupBonus int) (string, error) {
	args := m.Called(ctx, user, signupBonus)
	return args.String(0), args.Error(1)
}

func (m *UsersMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAuth_Register(t *testing.T) {
	users := new(UsersMock)
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		// Пароль хэшируется, роль по умолчанию user
		return u.Username == "alice" &&
			u.Email == "alice@example.com" &&
			u.Role == "user" &&
			password.CompareHash(u.PasswordHash, "secret123") == nil
	}), 1000).Return("uid-1", nil).Once()

	service := NewAuthService(users, maker, 1000)

	uid, err := service.Register(context.Background(), "alice@example.com", "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	users.AssertExpectations(t)
}

func TestAuth_Login(t *testing.T) {
	hashed, err := password.GetHash("secret123")
	require.NoError(t, err)

	user := &models.User{
		UUID:         "uid-1",
		Username:     "alice",
		PasswordHash: hashed,
		Role:         "admin",
	}

	tests := []struct {
		name       string
		setupMocks func(users *UsersMock)
		password   string
		wantErr    bool
	}{
		{
			name: "success login",
			setupMocks: func(users *UsersMock) {
				users.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
			},
			password: "secret123",
			wantErr:  false,
		},
		{
			name: "wrong password",
			setupMocks: func(users *UsersMock) {
				users.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil).Once()
			},
			password: "wrongpass",
			wantErr:  true,
		},
		{
			name: "unknown user",
			setupMocks: func(users *UsersMock) {
				users.On("GetUserByUsername", mock.Anything, "alice").
					Return(nil, repository.ErrUserNotFound).Once()
			},
			password: "secret123",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			tt.setupMocks(users)

			maker := jwt.NewJWTMaker("test-secret", time.Hour)
			service := NewAuthService(users, maker, 1000)

			token, role, err := service.Login(context.Background(), "alice", tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.EqualError(t, err, "invalid credentials")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin", role)

			// Токен содержит данные пользователя
			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Username)
			assert.Equal(t, "admin", claims.Role)
			assert.Equal(t, "uid-1", claims.UserUID)

			users.AssertExpectations(t)
		})
	}
}
