// Package list реализует HTTP-обработчик списка уроков курса.
//
// Уроки видят администраторы и пользователи с подпиской на курс.
// Остальным аутентифицированным пользователям возвращается 403.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	catalogservice "github.com/magabrotheeeer/course-platform/internal/services/catalog"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// Handler управляет HTTP-запросами на чтение уроков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения уроков.
type Service interface {
	ListLessons(ctx context.Context, courseID int, userUID, role string) ([]*models.Lesson, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список уроков курса
// @Description Возвращает уроки курса. Доступно персоналу и подписчикам курса.
// @Tags Lessons
// @Produce  json
// @Param id path int true "ID курса"
// @Success 200 {object} map[string]any "Список уроков"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет подписки на курс"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id}/lessons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, okUID := r.Context().Value(middlewarectx.UserUID).(string)
	role, okRole := r.Context().Value(middlewarectx.Role).(string)
	if !okUID || !okRole || userUID == "" {
		log.Error("user identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	lessons, err := h.service.ListLessons(r.Context(), courseID, userUID, role)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCourseNotFound):
			log.Error("course not found", slog.Int("course_id", courseID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
		case errors.Is(err, catalogservice.ErrNoSubscription):
			log.Error("no subscription for course",
				slog.Int("course_id", courseID),
				slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("subscription required"))
		default:
			log.Error("failed to list lessons", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not list lessons"))
		}
		return
	}

	log.Info("lessons listed", slog.Int("course_id", courseID), slog.Int("count", len(lessons)))
	render.JSON(w, r, response.OKWithData(lessons))
}
