package status

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

type Service interface {
	Status() models.SubscriptionStatus
}

type Handler struct {
	service Service
}

func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Состояние подписки и счётчика сообщений
// @Tags Subscription
// @Produce json
// @Success 200 {object} response.Response{data=models.SubscriptionStatus}
// @Security BearerAuth
// @Router /subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.service.Status()))
}
