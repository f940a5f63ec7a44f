// Package remove удаляет одно сообщение из журнала чата.
package remove

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
)

type Service interface {
	DeleteMessage(id string) bool
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
// @Summary Удалить сообщение
// @Tags Chat
// @Produce json
// @Param id path string true "ID сообщения"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /chat/messages/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.remove"

	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("message_id", id),
	)

	if !h.service.DeleteMessage(id) {
		log.Info("message not found")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("message not found"))
		return
	}

	log.Info("message deleted")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted": id,
	}))
}
