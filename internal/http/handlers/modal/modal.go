// Package modal показывает и скрывает модальные окна гейтов:
// окно входа и предложение подписки обслуживаются одним обработчиком.
package modal

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

// Service гейт с модальным окном.
type Service interface {
	SetModalVisible(visible bool)
}

type Handler struct {
	log     *slog.Logger
	service Service
	name    string
}

// New создает Handler. name попадает в логи.
func New(log *slog.Logger, service Service, name string) *Handler {
	return &Handler{
		log:     log,
		service: service,
		name:    name,
	}
}

// ServeHTTP godoc
// @Summary Показать или скрыть окно
// @Tags Gates
// @Accept json
// @Produce json
// @Param request body models.ModalRequest true "Видимость окна"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /subscription/modal [post]
// @Router /access/modal [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.modal"

	log := h.log.With(
		slog.String("op", op),
		slog.String("modal", h.name),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ModalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	h.service.SetModalVisible(req.Visible)
	log.Info("modal visibility changed", slog.Bool("visible", req.Visible))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"modalVisible": req.Visible,
	}))
}
