package settings

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

type Service interface {
	Settings() models.VoiceSettings
}

type Handler struct {
	service Service
}

func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Настройки голоса
// @Tags Voice
// @Produce json
// @Success 200 {object} response.Response{data=models.VoiceSettings}
// @Security BearerAuth
// @Router /voice [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.service.Settings()))
}
