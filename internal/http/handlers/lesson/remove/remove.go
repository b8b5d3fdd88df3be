// Package remove реализует HTTP-обработчик удаления урока из курса.
//
// Удалять уроки может только персонал.
package remove

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
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// Handler управляет HTTP-запросами на удаление уроков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления урока.
type Service interface {
	RemoveLesson(ctx context.Context, courseID, lessonID int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить урок
// @Description Удаляет урок курса по ID. Доступно только персоналу.
// @Tags Lessons
// @Produce  json
// @Param id path int true "ID курса"
// @Param lesson_id path int true "ID урока"
// @Success 200 {object} response.Response "Успешное удаление"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Урок не найден"
// @Router /courses/{id}/lessons/{lesson_id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, ok := r.Context().Value(middlewarectx.Role).(string)
	if !ok || role == "" {
		log.Error("role not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	if role != middlewarectx.RoleAdmin {
		log.Error("access denied", slog.String("role", role))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("staff access required"))
		return
	}

	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}
	lessonID, err := strconv.Atoi(chi.URLParam(r, "lesson_id"))
	if err != nil {
		log.Error("failed to decode lesson_id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode lesson_id from url"))
		return
	}

	if err := h.service.RemoveLesson(r.Context(), courseID, lessonID); err != nil {
		if errors.Is(err, repository.ErrLessonNotFound) {
			log.Error("lesson not found",
				slog.Int("course_id", courseID),
				slog.Int("lesson_id", lessonID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("lesson not found"))
			return
		}
		log.Error("failed to remove lesson", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove lesson"))
		return
	}

	log.Info("lesson removed", slog.Int("course_id", courseID), slog.Int("lesson_id", lessonID))
	render.JSON(w, r, response.OK())
}
