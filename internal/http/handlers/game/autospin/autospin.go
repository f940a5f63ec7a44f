package autospin

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

type Service interface {
	SetAutoSpin(enabled bool) models.SlotState
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
// @Summary Автоигра
// @Tags Game
// @Accept json
// @Produce json
// @Param request body models.AutoSpinRequest true "Включить или выключить"
// @Success 200 {object} response.Response{data=models.SlotState}
// @Failure 400 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /game/autospin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.game.autospin"

	var req models.AutoSpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode request body",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(h.service.SetAutoSpin(req.Enabled)))
}
