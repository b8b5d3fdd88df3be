package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListCourses(ctx context.Context) ([]*models.CourseWithMetrics, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]*models.CourseWithMetrics), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListCoursesHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "список курсов доступен анонимно",
			setupMock: func(m *MockService) {
				courses := []*models.CourseWithMetrics{
					{
						Course:              models.Course{ID: 1, Author: "Иван Петров", Title: "Go с нуля", Price: 700},
						Lessons:             []string{"Введение"},
						LessonsCount:        1,
						StudentsCount:       2,
						GroupsFilledPercent: 75,
						DemandCoursePercent: 25,
					},
				}
				m.On("ListCourses", mock.Anything).Return(courses, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"groups_filled_percent":75`,
		},
		{
			name: "ошибка сервиса",
			setupMock: func(m *MockService) {
				m.On("ListCourses", mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not list courses"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/courses", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
