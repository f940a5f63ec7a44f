package companion

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/companion-chat/internal/config"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/chat/apikey"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/chat/image"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/chat/list"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/chat/remove"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/chat/reset"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/chat/send"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/game/autospin"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/game/bet"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/game/spin"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/game/state"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/health"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/modal"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/session"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/subscription/checkout"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/subscription/verify"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/voice/audio"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/voice/play"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/voice/settings"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/voice/stop"
	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/voice/update"
	"github.com/magabrotheeeer/companion-chat/internal/http/middlewarectx"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services, cfg config.HTTPServer) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки: клиент решает, какой экран показать, и входит
		r.Get("/session", session.New(logger, svc.Companion).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Access).ServeHTTP)
		r.Post("/access/modal", modal.New(logger, svc.Access, "access").ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Access, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

			r.Post("/logout", logout.New(logger, svc.Access).ServeHTTP)

			r.Put("/chat/api-key", apikey.New(logger, svc.Chat, svc.Companion).ServeHTTP)
			r.Get("/chat/messages", list.New(svc.Companion).ServeHTTP)
			r.Post("/chat/messages", send.New(logger, svc.Companion).ServeHTTP)
			r.Delete("/chat/messages", reset.New(logger, svc.Companion).ServeHTTP)
			r.Delete("/chat/messages/{id}", remove.New(logger, svc.Chat).ServeHTTP)
			r.Post("/chat/images", image.New(logger, svc.Companion).ServeHTTP)

			r.Get("/subscription", status.New(svc.Subscription).ServeHTTP)
			r.Post("/subscription/checkout", checkout.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/subscription/verify", verify.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/subscription/modal", modal.New(logger, svc.Subscription, "subscription").ServeHTTP)

			r.Get("/voice", settings.New(svc.Voice).ServeHTTP)
			r.Put("/voice", update.New(logger, svc.Voice).ServeHTTP)
			r.Post("/voice/play", play.New(logger, svc.Voice).ServeHTTP)
			r.Get("/voice/audio", audio.New(logger, svc.Voice).ServeHTTP)
			r.Post("/voice/stop", stop.New(svc.Voice).ServeHTTP)

			r.Get("/game", state.New(svc.Slot).ServeHTTP)
			r.Post("/game/spin", spin.New(logger, svc.Slot).ServeHTTP)
			r.Post("/game/bet", bet.New(logger, svc.Slot).ServeHTTP)
			r.Post("/game/autospin", autospin.New(logger, svc.Slot).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
