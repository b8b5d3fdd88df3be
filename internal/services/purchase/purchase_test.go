package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/rabbitmq"
	catalogservice "github.com/magabrotheeeer/course-platform/internal/services/catalog"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) Pay(ctx context.Context, userUID string, courseID int) (*models.PurchaseResult, error) {
	args := m.Called(ctx, userUID, courseID)
	if res := args.Get(0); res != nil {
		return res.(*models.PurchaseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) GetBalance(ctx context.Context, userUID string) (*models.Balance, error) {
	args := m.Called(ctx, userUID)
	if res := args.Get(0); res != nil {
		return res.(*models.Balance), args.Error(1)
	}
	return nil, args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPurchase_Pay_Success(t *testing.T) {
	purchasedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	result := &models.PurchaseResult{
		Subscription: models.Subscription{
			ID:        42,
			UserUID:   "uid-1",
			CourseID:  7,
			CreatedAt: purchasedAt,
		},
		PaymentDetails: models.PaymentDetails{
			Amount:           700,
			PreviousBalance:  1000,
			RemainingBalance: 300,
		},
	}

	repo := new(RepoMock)
	cache := new(CacheMock)
	publisher := new(PublisherMock)

	repo.On("Pay", mock.Anything, "uid-1", 7).Return(result, nil).Once()
	cache.On("Invalidate", catalogservice.CoursesCacheKey).Return(nil).Once()
	publisher.On("Publish", rabbitmq.PurchasedQueue, models.PurchaseEvent{
		SubscriptionID: 42,
		UserUID:        "uid-1",
		Username:       "alice",
		CourseID:       7,
		Amount:         700,
		PurchasedAt:    purchasedAt,
	}).Return(nil).Once()

	service := NewPurchaseService(repo, cache, publisher, NewNoopLogger())

	got, err := service.Pay(context.Background(), "alice", "uid-1", 7)
	require.NoError(t, err)
	assert.Equal(t, result, got)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPurchase_Pay_WithoutPublisher(t *testing.T) {
	result := &models.PurchaseResult{
		Subscription:   models.Subscription{ID: 42, UserUID: "uid-1", CourseID: 7},
		PaymentDetails: models.PaymentDetails{Amount: 700, PreviousBalance: 700, RemainingBalance: 0},
	}

	repo := new(RepoMock)
	cache := new(CacheMock)

	repo.On("Pay", mock.Anything, "uid-1", 7).Return(result, nil).Once()
	cache.On("Invalidate", catalogservice.CoursesCacheKey).Return(nil).Once()

	service := NewPurchaseService(repo, cache, nil, NewNoopLogger())

	got, err := service.Pay(context.Background(), "alice", "uid-1", 7)
	require.NoError(t, err)
	assert.Equal(t, result, got)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPurchase_Pay_PublishErrorDoesNotFailPurchase(t *testing.T) {
	result := &models.PurchaseResult{
		Subscription:   models.Subscription{ID: 42, UserUID: "uid-1", CourseID: 7},
		PaymentDetails: models.PaymentDetails{Amount: 700, PreviousBalance: 1000, RemainingBalance: 300},
	}

	repo := new(RepoMock)
	cache := new(CacheMock)
	publisher := new(PublisherMock)

	repo.On("Pay", mock.Anything, "uid-1", 7).Return(result, nil).Once()
	cache.On("Invalidate", catalogservice.CoursesCacheKey).Return(nil).Once()
	publisher.On("Publish", rabbitmq.PurchasedQueue, mock.Anything).
		Return(errors.New("broker down")).Once()

	service := NewPurchaseService(repo, cache, publisher, NewNoopLogger())

	got, err := service.Pay(context.Background(), "alice", "uid-1", 7)
	require.NoError(t, err)
	assert.Equal(t, result, got)

	publisher.AssertExpectations(t)
}

func TestPurchase_Balance(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock)
		want       *models.Balance
		wantErr    error
	}{
		{
			name: "success read",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetBalance", mock.Anything, "uid-1").
					Return(&models.Balance{UserUID: "uid-1", Bonuses: 300}, nil).Once()
			},
			want: &models.Balance{UserUID: "uid-1", Bonuses: 300},
		},
		{
			name: "balance not found",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetBalance", mock.Anything, "uid-1").
					Return(nil, repository.ErrBalanceNotFound).Once()
			},
			wantErr: repository.ErrBalanceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo)

			service := NewPurchaseService(repo, cache, nil, NewNoopLogger())

			got, err := service.Balance(context.Background(), "uid-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestPurchase_Pay_ErrorPassthrough(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
	}{
		{name: "course not found", repoErr: repository.ErrCourseNotFound},
		{name: "already subscribed", repoErr: repository.ErrAlreadySubscribed},
		{name: "balance not found", repoErr: repository.ErrBalanceNotFound},
		{name: "insufficient funds", repoErr: &repository.InsufficientFundsError{Current: 100, Required: 700}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)

			repo.On("Pay", mock.Anything, "uid-1", 7).Return(nil, tt.repoErr).Once()

			service := NewPurchaseService(repo, cache, nil, NewNoopLogger())

			_, err := service.Pay(context.Background(), "alice", "uid-1", 7)
			require.Error(t, err)
			assert.Equal(t, tt.repoErr, err)

			// Кеш не сбрасывается при неуспешной покупке
			cache.AssertNotCalled(t, "Invalidate", catalogservice.CoursesCacheKey)

			repo.AssertExpectations(t)
		})
	}
}
