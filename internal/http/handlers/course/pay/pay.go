// Package pay реализует HTTP-обработчик покупки курса за бонусы.
//
// Покупка атомарна: проверка баланса, создание подписки и списание
// бонусов выполняются в одной транзакции на стороне хранилища.
package pay

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
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// Handler управляет HTTP-запросами на покупку курсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики покупки курса.
type Service interface {
	Pay(ctx context.Context, username, userUID string, courseID int) (*models.PurchaseResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Купить курс
// @Description Списывает бонусы с баланса пользователя и оформляет подписку на курс.
// @Tags Purchase
// @Produce  json
// @Param id path int true "ID курса"
// @Success 201 {object} map[string]any "Курс успешно куплен"
// @Failure 400 {object} response.ErrorResponse "Недостаточно бонусов или повторная покупка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id}/pay [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.pay"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, okUser := r.Context().Value(middlewarectx.User).(string)
	userUID, okUID := r.Context().Value(middlewarectx.UserUID).(string)
	if !okUser || !okUID || username == "" || userUID == "" {
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

	result, err := h.service.Pay(r.Context(), username, userUID, courseID)
	if err != nil {
		var insufficient *repository.InsufficientFundsError
		switch {
		case errors.Is(err, repository.ErrCourseNotFound):
			log.Error("course not found", slog.Int("course_id", courseID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
		case errors.As(err, &insufficient):
			log.Error("insufficient funds",
				slog.Int("current", insufficient.Current),
				slog.Int("required", insufficient.Required))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, map[string]any{
				"status":          response.StatusError,
				"error":           "insufficient bonus balance",
				"current_balance": insufficient.Current,
				"required":        insufficient.Required,
				"deficit":         insufficient.Deficit(),
			})
		case errors.Is(err, repository.ErrAlreadySubscribed):
			log.Error("course already purchased", slog.Int("course_id", courseID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("course already purchased"))
		case errors.Is(err, repository.ErrBalanceNotFound):
			log.Error("balance not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("bonus balance not found"))
		default:
			log.Error("failed to pay for course", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not complete purchase"))
		}
		return
	}

	log.Info("course purchased",
		slog.Int("course_id", courseID),
		slog.String("user_uid", userUID),
		slog.Int("amount", result.PaymentDetails.Amount))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message":         "course purchased",
		"subscription":    result.Subscription,
		"payment_details": result.PaymentDetails,
	}))
}
