// Package list реализует HTTP-обработчик списка курсов.
//
// Список доступен без аутентификации. Вместе с курсами возвращаются
// производные метрики: количество уроков, число студентов, средняя
// заполненность групп и востребованность курса.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Handler управляет HTTP-запросами на чтение списка курсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения каталога.
type Service interface {
	ListCourses(ctx context.Context) ([]*models.CourseWithMetrics, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список курсов
// @Description Возвращает все курсы с производными метриками. Доступен анонимно.
// @Tags Courses
// @Produce  json
// @Success 200 {object} map[string]any "Список курсов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /courses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		log.Error("failed to list courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list courses"))
		return
	}

	log.Info("courses listed", slog.Int("count", len(courses)))
	render.JSON(w, r, response.OKWithData(courses))
}
