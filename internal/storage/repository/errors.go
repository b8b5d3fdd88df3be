package repository

import (
	"errors"
	"fmt"
)

// Ошибки уровня хранилища, которые обработчики переводят в HTTP-статусы.
var (
	// ErrCourseNotFound курс с указанным ID отсутствует.
	ErrCourseNotFound = errors.New("course not found")
	// ErrLessonNotFound урок с указанным ID отсутствует в курсе.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrBalanceNotFound у пользователя нет кошелька бонусов.
	ErrBalanceNotFound = errors.New("balance not found")
	// ErrAlreadySubscribed подписка на курс уже существует.
	ErrAlreadySubscribed = errors.New("subscription already exists")
	// ErrUserNotFound пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// InsufficientFundsError возвращается, когда бонусов на балансе
// меньше цены курса. Несёт диагностические данные для ответа клиенту.
type InsufficientFundsError struct {
	Current  int // Текущий баланс
	Required int // Цена курса
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %d bonuses, need %d", e.Current, e.Required)
}

// Deficit возвращает, сколько бонусов не хватает до цены курса.
func (e *InsufficientFundsError) Deficit() int {
	return e.Required - e.Current
}
