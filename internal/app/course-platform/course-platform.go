package courseplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/course-platform/internal/cache"
	"github.com/magabrotheeeer/course-platform/internal/config"
	"github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/migrations"
	"github.com/magabrotheeeer/course-platform/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/course-platform/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/course-platform/internal/services/catalog"
	purchaseservice "github.com/magabrotheeeer/course-platform/internal/services/purchase"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и подключения к внешним системам.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New собирает приложение: хранилище, миграции, кеш, очередь событий,
// сервисы и маршруты. Недоступность RabbitMQ не фатальна: события покупок
// в этом случае не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var publisher purchaseservice.EventPublisher
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection.URL, cfg.RabbitMQConnection.Retries, cfg.RabbitMQConnection.RetryDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, purchase events disabled", sl.Err(err))
	} else {
		ch, err := rabbitmq.SetupChannel(conn)
		if err != nil {
			logger.Warn("rabbitmq channel setup failed, purchase events disabled", sl.Err(err))
		} else {
			publisher = rabbitmq.NewPublisher(ch)
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker, cfg.SignupBonus)
	catalogService := catalogservice.NewCatalogService(db, cacheRedis, logger)
	purchaseService := purchaseservice.NewPurchaseService(db, cacheRedis, publisher, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, catalogService, purchaseService, authService, jwtMaker, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
