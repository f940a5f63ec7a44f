// Package verify проверяет пароль подписки после активации.
package verify

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

type Service interface {
	VerifyPassword(candidate string) bool
	Status() models.SubscriptionStatus
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
// @Summary Пароль подписки
// @Tags Subscription
// @Accept json
// @Produce json
// @Param request body models.VerifyPasswordRequest true "Пароль"
// @Success 200 {object} response.Response{data=models.SubscriptionStatus}
// @Failure 401 {object} response.ErrorResponse "Неверный пароль"
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /subscription/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.VerifyPasswordRequest
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

	if !h.service.VerifyPassword(req.Password) {
		log.Info("incorrect subscription password")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("incorrect password"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(h.service.Status()))
}
