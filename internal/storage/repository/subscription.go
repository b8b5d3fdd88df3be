package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// HasSubscription проверяет, есть ли у пользователя подписка на курс.
func (s *Storage) HasSubscription(ctx context.Context, userUID string, courseID int) (bool, error) {
	const op = "storage.HasSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM subscriptions
			      WHERE user_uid = $1 AND course_id = $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userUID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetBalance возвращает кошелёк бонусов пользователя.
func (s *Storage) GetBalance(ctx context.Context, userUID string) (*models.Balance, error) {
	const op = "storage.GetBalance"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, bonuses FROM balances WHERE user_uid = $1`
	var balance models.Balance
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&balance.UserUID, &balance.Bonuses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBalanceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &balance, nil
}

// Pay выполняет покупку курса одной транзакцией: проверяет баланс,
// списывает бонусы и создаёт подписку. Оба изменения фиксируются вместе
// или не фиксируются вовсе. Баланс блокируется на время транзакции,
// гонка двух покупок одного курса дополнительно отсекается уникальным
// индексом (user_uid, course_id).
func (s *Storage) Pay(ctx context.Context, userUID string, courseID int) (*models.PurchaseResult, error) {
	const op = "storage.Pay"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var price int
	query := `SELECT price FROM courses WHERE id = $1`
	if err := tx.QueryRowContext(ctx, query, courseID).Scan(&price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var bonuses int
	query = `SELECT bonuses FROM balances WHERE user_uid = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, userUID).Scan(&bonuses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBalanceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if bonuses < price {
		return nil, &InsufficientFundsError{Current: bonuses, Required: price}
	}

	var exists bool
	query = `SELECT EXISTS (
			     SELECT 1 FROM subscriptions
			     WHERE user_uid = $1 AND course_id = $2
			 )`
	if err := tx.QueryRowContext(ctx, query, userUID, courseID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, ErrAlreadySubscribed
	}

	sub := models.Subscription{
		UserUID:  userUID,
		CourseID: courseID,
	}
	query = `INSERT INTO subscriptions (user_uid, course_id)
			 VALUES ($1, $2)
			 RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, query, userUID, courseID).Scan(&sub.ID, &sub.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `UPDATE balances SET bonuses = bonuses - $1 WHERE user_uid = $2`
	if _, err := tx.ExecContext(ctx, query, price, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.PurchaseResult{
		Subscription: sub,
		PaymentDetails: models.PaymentDetails{
			Amount:           price,
			PreviousBalance:  bonuses,
			RemainingBalance: bonuses - price,
		},
	}, nil
}

// CountSubscriptions возвращает общее количество подписок.
func (s *Storage) CountSubscriptions(ctx context.Context) (int, error) {
	const op = "storage.CountSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions`).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
