// Package spin запускает вращение барабанов.
//
// Ответ приходит сразу со Spinning=true, результат появляется в GET /game
// после задержки вращения.
package spin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/models"
	"github.com/magabrotheeeer/companion-chat/internal/services/slot"
)

type Service interface {
	Spin() (models.SlotState, error)
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
// @Summary Крутить барабаны
// @Tags Game
// @Produce json
// @Success 200 {object} response.Response{data=models.SlotState}
// @Failure 409 {object} response.Response{data=models.SlotState} "Вращение уже идёт или не хватает кредитов"
// @Failure 503 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /game/spin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.game.spin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	state, err := h.service.Spin()
	switch {
	case err == nil:
		render.JSON(w, r, response.StatusOKWithData(state))
	case errors.Is(err, slot.ErrSpinInProgress):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.ErrorWithData("spin already in progress", state))
	case errors.Is(err, slot.ErrInsufficientCredits):
		log.Info("spin rejected, credits topped up", slog.Int("credits", state.Credits))
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.ErrorWithData("insufficient credits", state))
	default:
		log.Warn("spin failed", slog.String("reason", err.Error()))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("game is not available"))
	}
}
