// Package checkout имитирует оплату подписки.
//
// Данные карты только проверяются на формат и никуда не передаются.
// После задержки подписка активируется и требует ввода пароля подписки.
package checkout

import (
	"context"
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
	"github.com/magabrotheeeer/companion-chat/internal/services/subscription"
)

// Service гейт подписки.
type Service interface {
	Checkout(ctx context.Context) error
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
// @Summary Оформить подписку
// @Tags Subscription
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Данные карты"
// @Success 200 {object} response.Response{data=models.SubscriptionStatus}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Оплата уже выполняется"
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /subscription/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CheckoutRequest
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

	err := h.service.Checkout(r.Context())
	switch {
	case errors.Is(err, subscription.ErrPaymentInProgress):
		log.Info("checkout already running")
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.ErrorWithData("payment is already being processed", h.service.Status()))
		return
	case err != nil:
		log.Error("checkout failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("payment was not completed"))
		return
	}

	log.Info("subscription activated")
	render.JSON(w, r, response.StatusOKWithData(h.service.Status()))
}
