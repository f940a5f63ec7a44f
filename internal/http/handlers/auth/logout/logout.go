// Package logout завершает сессию: все выданные токены перестают действовать.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
)

type Service interface {
	Logout()
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход из приложения
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	h.service.Logout()
	h.log.Info("logged out",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"isAuthenticated": false,
	}))
}
