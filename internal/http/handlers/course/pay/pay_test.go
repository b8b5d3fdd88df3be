package pay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// MockService реализует интерфейс pay.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Pay(ctx context.Context, username, userUID string, courseID int) (*models.PurchaseResult, error) {
	args := m.Called(ctx, username, userUID, courseID)
	if res := args.Get(0); res != nil {
		return res.(*models.PurchaseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPayHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result := &models.PurchaseResult{
		Subscription: models.Subscription{
			ID:        42,
			UserUID:   "uid-1",
			CourseID:  7,
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		PaymentDetails: models.PaymentDetails{
			Amount:           700,
			PreviousBalance:  1000,
			RemainingBalance: 300,
		},
	}

	tests := []struct {
		name           string
		courseID       string
		withIdentity   bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:         "успешная покупка курса",
			courseID:     "7",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Pay", mock.Anything, "alice", "uid-1", 7).Return(result, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"remaining_balance":300`,
		},
		{
			name:           "анонимный запрос отклоняется",
			courseID:       "7",
			withIdentity:   false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:         "курс не найден",
			courseID:     "999",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Pay", mock.Anything, "alice", "uid-1", 999).
					Return(nil, repository.ErrCourseNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"course not found"`,
		},
		{
			name:         "недостаточно бонусов",
			courseID:     "7",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Pay", mock.Anything, "alice", "uid-1", 7).
					Return(nil, &repository.InsufficientFundsError{Current: 100, Required: 700})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"deficit":600`,
		},
		{
			name:         "повторная покупка",
			courseID:     "7",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Pay", mock.Anything, "alice", "uid-1", 7).
					Return(nil, repository.ErrAlreadySubscribed)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"course already purchased"`,
		},
		{
			name:         "у пользователя нет кошелька",
			courseID:     "7",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Pay", mock.Anything, "alice", "uid-1", 7).
					Return(nil, repository.ErrBalanceNotFound)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"bonus balance not found"`,
		},
		{
			name:         "внутренняя ошибка",
			courseID:     "7",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Pay", mock.Anything, "alice", "uid-1", 7).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not complete purchase"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/courses/"+tt.courseID+"/pay", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.courseID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withIdentity {
				ctx = context.WithValue(ctx, middlewarectx.User, "alice")
				ctx = context.WithValue(ctx, middlewarectx.UserUID, "uid-1")
				ctx = context.WithValue(ctx, middlewarectx.Role, "user")
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
