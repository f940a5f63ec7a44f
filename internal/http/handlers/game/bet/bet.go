// Package bet меняет ставку на один шаг.
package bet

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
	"github.com/magabrotheeeer/companion-chat/internal/services/slot"
)

type Service interface {
	AdjustBet(direction int) (models.SlotState, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить ставку
// @Tags Game
// @Accept json
// @Produce json
// @Param request body models.BetRequest true "Направление: 1 или -1"
// @Success 200 {object} response.Response{data=models.SlotState}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.Response{data=models.SlotState}
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /game/bet [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.game.bet"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.BetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	state, err := h.service.AdjustBet(req.Direction)
	if errors.Is(err, slot.ErrSpinInProgress) {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.ErrorWithData("spin already in progress", state))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(state))
}
