// Package services содержит бизнес-логику покупки курса за бонусы.
//
// Сама транзакция проверки баланса, списания и создания подписки выполняется
// хранилищем; сервис отвечает за метрики, событие покупки и сброс кеша каталога.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/metrics"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/rabbitmq"
	catalogservice "github.com/magabrotheeeer/course-platform/internal/services/catalog"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// PurchaseRepository определяет операции покупки и кошелька в хранилище.
type PurchaseRepository interface {
	// Pay атомарно списывает цену курса с баланса и создаёт подписку.
	Pay(ctx context.Context, userUID string, courseID int) (*models.PurchaseResult, error)
	// GetBalance возвращает кошелёк бонусов пользователя.
	GetBalance(ctx context.Context, userUID string) (*models.Balance, error)
}

// Cache описывает сброс кеша каталога после покупки.
type Cache interface {
	Invalidate(key string) error
}

// EventPublisher публикует события покупок в очередь сообщений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// PurchaseService оркеструет покупку курса.
type PurchaseService struct {
	repo      PurchaseRepository
	cache     Cache
	publisher EventPublisher
	log       *slog.Logger
}

// NewPurchaseService создает новый экземпляр PurchaseService.
// publisher может быть nil, тогда события покупок не публикуются.
func NewPurchaseService(repo PurchaseRepository, cache Cache, publisher EventPublisher, log *slog.Logger) *PurchaseService {
	return &PurchaseService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// Pay покупает курс для пользователя. Все проверки и изменения выполняются
// одной транзакцией в хранилище; при любой ошибке баланс и подписки
// остаются в исходном состоянии.
func (s *PurchaseService) Pay(ctx context.Context, username, userUID string, courseID int) (*models.PurchaseResult, error) {
	result, err := s.repo.Pay(ctx, userUID, courseID)
	if err != nil {
		metrics.PurchaseFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	metrics.PurchasesTotal.Inc()
	s.log.Info("course purchased",
		slog.String("username", username),
		slog.Int("course_id", courseID),
		slog.Int("amount", result.PaymentDetails.Amount),
	)

	if err := s.cache.Invalidate(catalogservice.CoursesCacheKey); err != nil {
		s.log.Warn("failed to invalidate course list cache", sl.Err(err))
	}

	if s.publisher != nil {
		event := models.PurchaseEvent{
			SubscriptionID: result.Subscription.ID,
			UserUID:        userUID,
			Username:       username,
			CourseID:       courseID,
			Amount:         result.PaymentDetails.Amount,
			PurchasedAt:    result.Subscription.CreatedAt,
		}
		if err := s.publisher.Publish(rabbitmq.PurchasedQueue, event); err != nil {
			// Покупка уже зафиксирована, событие теряем только в логе.
			s.log.Warn("failed to publish purchase event", sl.Err(err))
		}
	}

	return result, nil
}

// Balance возвращает текущий кошелёк бонусов пользователя.
func (s *PurchaseService) Balance(ctx context.Context, userUID string) (*models.Balance, error) {
	return s.repo.GetBalance(ctx, userUID)
}

func failureReason(err error) string {
	var insufficientFunds *repository.InsufficientFundsError
	switch {
	case errors.Is(err, repository.ErrCourseNotFound):
		return "course_not_found"
	case errors.Is(err, repository.ErrAlreadySubscribed):
		return "already_subscribed"
	case errors.Is(err, repository.ErrBalanceNotFound):
		return "balance_not_found"
	case errors.As(err, &insufficientFunds):
		return "insufficient_funds"
	default:
		return "internal"
	}
}
