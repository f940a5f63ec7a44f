package list

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

type Service interface {
	ChatView() models.ChatView
}

type Handler struct {
	service Service
}

func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Журнал чата
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Response{data=models.ChatView}
// @Security BearerAuth
// @Router /chat/messages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.service.ChatView()))
}
