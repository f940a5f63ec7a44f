// Package image отправляет персонажу изображение.
package image

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/companion-chat/internal/http/handlers/chat/send"
	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

type Service interface {
	SendImage(ctx context.Context, imageURI string) (models.Message, error)
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
// @Summary Отправить изображение
// @Description Учитывается в лимите как обычное сообщение.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body models.SendImageRequest true "Ссылка на изображение"
// @Success 200 {object} response.Response{data=models.Message}
// @Failure 400 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /chat/images [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.image"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SendImageRequest
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

	msg, err := h.service.SendImage(r.Context(), req.ImageURI)
	if err != nil {
		status, text := send.Status(err)
		log.Info("image rejected", sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, response.Error(text))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(msg))
}
