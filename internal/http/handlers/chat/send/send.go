// Package send реализует отправку текстового сообщения персонажу.
//
// Запрос ждёт ответа модели. Ошибки сервиса генерации приходят
// обычным сообщением ассистента с префиксом "Error: ", а не HTTP-ошибкой.
package send

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
	"github.com/magabrotheeeer/companion-chat/internal/services/chat"
	"github.com/magabrotheeeer/companion-chat/internal/services/companion"
)

// Service сценарий отправки сообщения.
type Service interface {
	SendMessage(ctx context.Context, text string) (models.Message, error)
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
// @Summary Отправить сообщение
// @Description Пустой текст в пустом чате запрашивает приветствие и не учитывается в лимите.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body models.SendMessageRequest true "Текст"
// @Success 200 {object} response.Response{data=models.Message} "Ответ ассистента"
// @Failure 400 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse "Бесплатный лимит исчерпан"
// @Failure 409 {object} response.ErrorResponse "Предыдущий ответ ещё не получен"
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /chat/messages [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.send"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SendMessageRequest
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

	msg, err := h.service.SendMessage(r.Context(), req.Text)
	if err != nil {
		status, text := Status(err)
		log.Info("message rejected", sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, response.Error(text))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(msg))
}

// Status переводит ошибку отправки в HTTP-статус и текст для клиента.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, companion.ErrLimitReached):
		return http.StatusPaymentRequired, "free message limit reached"
	case errors.Is(err, chat.ErrBusy):
		return http.StatusConflict, "previous message is still being answered"
	case errors.Is(err, companion.ErrEmptyMessage):
		return http.StatusUnprocessableEntity, "message is empty"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request cancelled, the reply will appear in the chat"
	default:
		return http.StatusInternalServerError, "internal service error"
	}
}
