// Package session отдаёт сводку, по которой клиент выбирает первый экран.
package session

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

// Service источник сводки сессии.
type Service interface {
	Session() models.SessionView
}

// Handler обрабатывает GET /session.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущая сессия
// @Description Экран, который нужно показать, состояние входа, ключа и подписки.
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response{data=models.SessionView}
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session"

	view := h.service.Session()
	h.log.Debug("session requested",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("screen", string(view.Screen)),
	)
	render.JSON(w, r, response.StatusOKWithData(view))
}
