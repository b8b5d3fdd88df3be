// Package read реализует HTTP-обработчик чтения кошелька бонусов.
//
// Пользователь видит только собственный баланс: uid берётся из JWT.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// Handler управляет HTTP-запросами на чтение баланса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения кошелька.
type Service interface {
	Balance(ctx context.Context, userUID string) (*models.Balance, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Баланс бонусов
// @Description Возвращает кошелёк бонусов текущего пользователя.
// @Tags Balance
// @Produce  json
// @Success 200 {object} map[string]any "Текущий баланс"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Кошелёк не найден"
// @Router /balance [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.balance.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	balance, err := h.service.Balance(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrBalanceNotFound) {
			log.Error("balance not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("bonus balance not found"))
			return
		}
		log.Error("failed to read balance", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read balance"))
		return
	}

	log.Info("balance read", slog.String("user_uid", userUID), slog.Int("bonuses", balance.Bonuses))
	render.JSON(w, r, response.OKWithData(balance))
}
