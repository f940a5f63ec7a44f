package stop

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

type Service interface {
	Stop()
	Settings() models.VoiceSettings
}

type Handler struct {
	service Service
}

func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Остановить воспроизведение
// @Tags Voice
// @Produce json
// @Success 200 {object} response.Response{data=models.VoiceSettings}
// @Security BearerAuth
// @Router /voice/stop [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.service.Stop()
	render.JSON(w, r, response.StatusOKWithData(h.service.Settings()))
}
