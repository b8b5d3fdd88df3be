package models

import "time"

// Subscription фиксирует доступ пользователя к курсу.
// Пара (user_uid, course_id) уникальна: купить курс можно только один раз.
type Subscription struct {
	ID        int       `json:"id"`         // Идентификатор подписки
	UserUID   string    `json:"user_uid"`   // Идентификатор пользователя
	CourseID  int       `json:"course_id"`  // Идентификатор курса
	CreatedAt time.Time `json:"created_at"` // Дата покупки
}

// Balance кошелёк бонусов пользователя, один на пользователя.
type Balance struct {
	UserUID string `json:"user_uid"` // Идентификатор пользователя
	Bonuses int    `json:"bonuses"`  // Текущее количество бонусов
}

// PaymentDetails детали списания при покупке курса.
type PaymentDetails struct {
	Amount           int `json:"amount"`            // Списанная сумма
	PreviousBalance  int `json:"previous_balance"`  // Баланс до списания
	RemainingBalance int `json:"remaining_balance"` // Баланс после списания
}

// PurchaseResult результат успешной покупки курса.
type PurchaseResult struct {
	Subscription   Subscription   `json:"subscription"`    // Созданная подписка
	PaymentDetails PaymentDetails `json:"payment_details"` // Детали списания
}

// PurchaseEvent событие покупки, публикуемое в очередь сообщений.
type PurchaseEvent struct {
	SubscriptionID int       `json:"subscription_id"`
	UserUID        string    `json:"user_uid"`
	Username       string    `json:"username"`
	CourseID       int       `json:"course_id"`
	Amount         int       `json:"amount"`
	PurchasedAt    time.Time `json:"purchased_at"`
}
