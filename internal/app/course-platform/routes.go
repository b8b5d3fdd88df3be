// Package courseplatform собирает приложение: маршруты, сервисы и HTTP-сервер.
package courseplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/auth/register"
	balanceread "github.com/magabrotheeeer/course-platform/internal/http/handlers/balance/read"
	coursecreate "github.com/magabrotheeeer/course-platform/internal/http/handlers/course/create"
	courselist "github.com/magabrotheeeer/course-platform/internal/http/handlers/course/list"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/course/pay"
	courseremove "github.com/magabrotheeeer/course-platform/internal/http/handlers/course/remove"
	courseupdate "github.com/magabrotheeeer/course-platform/internal/http/handlers/course/update"
	groupcreate "github.com/magabrotheeeer/course-platform/internal/http/handlers/group/create"
	grouplist "github.com/magabrotheeeer/course-platform/internal/http/handlers/group/list"
	"github.com/magabrotheeeer/course-platform/internal/http/handlers/health"
	lessoncreate "github.com/magabrotheeeer/course-platform/internal/http/handlers/lesson/create"
	lessonlist "github.com/magabrotheeeer/course-platform/internal/http/handlers/lesson/list"
	lessonremove "github.com/magabrotheeeer/course-platform/internal/http/handlers/lesson/remove"
	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/course-platform/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/course-platform/internal/services/catalog"
	purchaseservice "github.com/magabrotheeeer/course-platform/internal/services/purchase"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	catalogService *catalogservice.CatalogService,
	purchaseService *purchaseservice.PurchaseService,
	authService *authservice.AuthService,
	jwtMaker jwt.Maker,
	db *repository.Storage,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/courses", courselist.New(logger, catalogService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/courses", coursecreate.New(logger, catalogService).ServeHTTP)
			r.Put("/courses/{id}", courseupdate.New(logger, catalogService).ServeHTTP)
			r.Delete("/courses/{id}", courseremove.New(logger, catalogService).ServeHTTP)
			r.Get("/courses/{id}/lessons", lessonlist.New(logger, catalogService).ServeHTTP)
			r.Post("/courses/{id}/lessons", lessoncreate.New(logger, catalogService).ServeHTTP)
			r.Delete("/courses/{id}/lessons/{lesson_id}", lessonremove.New(logger, catalogService).ServeHTTP)
			r.Get("/courses/{id}/groups", grouplist.New(logger, catalogService).ServeHTTP)
			r.Post("/courses/{id}/groups", groupcreate.New(logger, catalogService).ServeHTTP)
			r.Post("/courses/{id}/pay", pay.New(logger, purchaseService).ServeHTTP)
			r.Get("/balance", balanceread.New(logger, purchaseService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, func() error {
		return repository.CheckDatabaseReady(db)
	}).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
