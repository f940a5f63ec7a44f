// Package reset очищает журнал чата и обнуляет счётчик бесплатных сообщений.
package reset

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

type Service interface {
	ClearChat()
	ChatView() models.ChatView
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
// @Summary Очистить чат
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Response{data=models.ChatView}
// @Security BearerAuth
// @Router /chat/messages [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.reset"

	h.service.ClearChat()
	h.log.Info("chat cleared",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.JSON(w, r, response.StatusOKWithData(h.service.ChatView()))
}
