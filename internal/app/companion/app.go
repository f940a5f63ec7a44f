// Package companion собирает процесс: хранилище, публикацию событий,
// сервисы сессии, HTTP-маршруты и фоновую проверку подписки.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/companion-chat/internal/clients/completion"
	"github.com/magabrotheeeer/companion-chat/internal/clients/speech"
	"github.com/magabrotheeeer/companion-chat/internal/config"
	"github.com/magabrotheeeer/companion-chat/internal/events"
	"github.com/magabrotheeeer/companion-chat/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/migrations"
	"github.com/magabrotheeeer/companion-chat/internal/services/scheduler"
	"github.com/magabrotheeeer/companion-chat/internal/session"
	"github.com/magabrotheeeer/companion-chat/internal/storage"
	"github.com/magabrotheeeer/companion-chat/internal/storage/memory"
	"github.com/magabrotheeeer/companion-chat/internal/storage/postgresql"
	"github.com/magabrotheeeer/companion-chat/internal/storage/redis"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server    *http.Server
	logger    *slog.Logger
	services  *Services
	scheduler *scheduler.SchedulerService
	closers   []func() error
}

// New подключает хранилище выбранного драйвера, при необходимости очищает
// состояние прошлой сессии и собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.companion.New"

	app := &App{logger: logger}

	store, err := app.openStore(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !cfg.KeepStateOnStart {
		if err := session.Initialize(store, storage.SessionKeys()); err != nil {
			logger.Warn("failed to reset session state", sl.Err(err))
		}
	}

	publisher := app.openPublisher(cfg)

	completer := completion.New(completion.Options{
		BaseURL:          cfg.Completion.BaseURL,
		Model:            cfg.Model,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		TopP:             cfg.TopP,
		PresencePenalty:  cfg.PresencePenalty,
		FrequencyPenalty: cfg.FrequencyPenalty,
		Referer:          cfg.Referer,
		Title:            cfg.Title,
		Timeout:          cfg.Completion.RequestTimeout,
	})
	synth := speech.New(speech.Options{
		BaseURL: cfg.Voice.BaseURL,
		ModelID: cfg.ModelID,
		Timeout: cfg.Voice.RequestTimeout,
	})

	services, err := NewServices(logger, cfg, store, publisher, completer, synth)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.services = services
	app.scheduler = scheduler.NewSchedulerService(services.Subscription, logger, cfg.RecheckInterval)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, cfg.HTTPServer)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "memory":
		a.logger.Warn("using in-memory storage, state is lost on restart")
		return memory.New(), nil
	case "postgres":
		store, err := postgresql.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		if err := migrations.Run(store.DB, cfg.MigrationsPath); err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := redis.New(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
}

// openPublisher подключается к RabbitMQ, если задан адрес. Без брокера события только логируются.
func (a *App) openPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NewLogPublisher(a.logger)
	}

	conn, err := rabbitmq.Connect(cfg.AMQPURL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		a.logger.Error("rabbitmq is unavailable, gate events will only be logged", sl.Err(err))
		return events.NewLogPublisher(a.logger)
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.ExchangeName, rabbitmq.GetGateQueues())
	if err != nil {
		a.logger.Error("failed to set up rabbitmq channel", sl.Err(err))
		_ = conn.Close()
		return events.NewLogPublisher(a.logger)
	}
	a.closers = append(a.closers, closeAMQP(conn, ch))
	return events.NewAMQPPublisher(ch, cfg.ExchangeName)
}

func closeAMQP(conn *amqp.Connection, ch *amqp.Channel) func() error {
	return func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}

// Run запускает HTTP-сервер и проверку подписки и останавливает их при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	schedCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	go a.scheduler.Run(schedCtx)

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

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}

	stopScheduler()
	a.services.Close()
	a.close()
	return err
}
