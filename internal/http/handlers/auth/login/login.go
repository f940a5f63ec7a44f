// Package login реализует HTTP-обработчик входа в приложение по паролю.
//
// При успешной проверке пароля возвращается JWT, привязанный к текущей сессии;
// в случае ошибок формируются соответствующие HTTP-ответы.
package login

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
	"github.com/magabrotheeeer/companion-chat/internal/services/access"
)

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Гейт доступа
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает гейт доступа.
type Service interface {
	Login(candidate string) (string, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход в приложение
// @Description Проверяет пароль приложения. Возвращает JWT текущей сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.LoginRequest true "Пароль приложения"
// @Success 200 {object} map[string]any "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверный пароль"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
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

	token, err := h.service.Login(req.Password)
	if errors.Is(err, access.ErrInvalidPassword) {
		log.Info("incorrect app password")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("incorrect password"))
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("login success")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
	}))
}
