// Package audio отдаёт готовый голосовой клип. Клип выдаётся один раз.
package audio

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/companion-chat/internal/clients/speech"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
)

type Service interface {
	TakeAudio() (*speech.Audio, bool)
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
// @Summary Текущий голосовой клип
// @Tags Voice
// @Produce audio/mpeg
// @Success 200 {file} binary
// @Success 204 "Клипа нет"
// @Security BearerAuth
// @Router /voice/audio [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.voice.audio"

	clip, ok := h.service.TakeAudio()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	contentType := clip.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(clip.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(clip.Data); err != nil {
		h.log.Warn("failed to write audio",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
	}
}
