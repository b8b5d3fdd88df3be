// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/password"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя вместе с кошельком бонусов
	// и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User, signupBonus int) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию и авторизацию пользователей.
type AuthService struct {
	users       UserRepository
	jwtMaker    jwt.Maker
	signupBonus int
}

// NewAuthService создает новый экземпляр AuthService.
// signupBonus — стартовое количество бонусов, зачисляемое при регистрации.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, signupBonus int) *AuthService {
	return &AuthService{
		users:       users,
		jwtMaker:    jwtMaker,
		signupBonus: signupBonus,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
// Кошелёк бонусов заводится в той же транзакции, что и пользователь.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
	}
	return s.users.RegisterUser(ctx, user, s.signupBonus)
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", errors.New("invalid credentials")
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", errors.New("invalid credentials")
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}
