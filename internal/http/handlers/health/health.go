// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
)

// Handler управляет HTTP-запросами проверки готовности.
type Handler struct {
	log     *slog.Logger
	checkDB func() error
}

// New создает новый Handler с переданными логгером и проверкой базы данных.
func New(log *slog.Logger, checkDB func() error) *Handler {
	return &Handler{
		log:     log,
		checkDB: checkDB,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Description Возвращает ok, если сервис и база данных готовы обслуживать запросы.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис готов"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.checkDB(); err != nil {
		h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not ready"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}
