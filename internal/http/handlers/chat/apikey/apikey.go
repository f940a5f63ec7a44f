// Package apikey сохраняет ключ сервиса генерации ответов.
package apikey

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/companion-chat/internal/http/response"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

// Service хранилище ключа.
type Service interface {
	SetAPIKey(key string)
}

// Viewer отдаёт состояние чата после смены ключа: при первом ключе в нём уже есть приветствие.
type Viewer interface {
	ChatView() models.ChatView
}

type Handler struct {
	log     *slog.Logger
	service Service
	viewer  Viewer
}

func New(log *slog.Logger, service Service, viewer Viewer) *Handler {
	return &Handler{
		log:     log,
		service: service,
		viewer:  viewer,
	}
}

// ServeHTTP godoc
// @Summary Ключ сервиса генерации
// @Description Пустой ключ удаляет сохранённый. Если чат пуст, персонаж здоровается.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body models.APIKeyRequest true "Ключ"
// @Success 200 {object} response.Response{data=models.ChatView}
// @Failure 400 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /chat/api-key [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.apikey"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.APIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	key := strings.TrimSpace(req.APIKey)
	h.service.SetAPIKey(key)
	log.Info("completion api key updated", slog.Bool("present", key != ""))
	render.JSON(w, r, response.StatusOKWithData(h.viewer.ChatView()))
}
