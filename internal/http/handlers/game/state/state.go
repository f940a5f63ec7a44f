package state

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

type Service interface {
	State() models.SlotState
}

type Handler struct {
	service Service
}

func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Состояние мини-игры
// @Tags Game
// @Produce json
// @Success 200 {object} response.Response{data=models.SlotState}
// @Security BearerAuth
// @Router /game [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.service.State()))
}
