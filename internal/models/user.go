// Package models содержит доменные структуры каталога курсов,
// кошелька бонусов и подписок, а также вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	CreatedAt    time.Time // Дата регистрации
}

// Student краткое представление пользователя в составе группы.
type Student struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterRequest данные регистрации нового пользователя.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest данные для входа пользователя.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
