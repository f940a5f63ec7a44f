package models

// LoginRequest ввод пароля приложения.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// APIKeyRequest ключ сервиса генерации ответов. Пустая строка удаляет ключ.
type APIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// SendMessageRequest текст пользователя. Пустой текст допустим только для запроса приветствия.
type SendMessageRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// SendImageRequest ссылка на выбранное изображение.
type SendImageRequest struct {
	ImageURI string `json:"imageUri" validate:"required"`
}

// VerifyPasswordRequest пароль подписки.
type VerifyPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// CheckoutRequest данные карты для имитации оплаты. Реального списания нет.
type CheckoutRequest struct {
	CardNumber string `json:"cardNumber" validate:"required,numeric,min=12,max=19"`
	Expiry     string `json:"expiry" validate:"required,datetime=01/06"`
	CVC        string `json:"cvc" validate:"required,numeric,min=3,max=4"`
	Name       string `json:"name" validate:"required"`
}

// ModalRequest показать или скрыть окно.
type ModalRequest struct {
	Visible bool `json:"visible"`
}

// VoiceSettingsRequest изменение настроек голоса. Отсутствующие поля не меняются.
type VoiceSettingsRequest struct {
	Enabled         *bool   `json:"voiceEnabled"`
	AutoPlayEnabled *bool   `json:"autoPlayEnabled"`
	APIKey          *string `json:"voiceApiKey"`
	VoiceID         *string `json:"voiceId" validate:"omitempty,alphanum"`
}

// BetRequest изменение ставки на шаг. Direction: 1 или -1.
type BetRequest struct {
	Direction int `json:"direction" validate:"required,oneof=1 -1"`
}

// AutoSpinRequest включение автоигры.
type AutoSpinRequest struct {
	Enabled bool `json:"enabled"`
}

// PlayVoiceRequest текст сообщения для озвучивания.
type PlayVoiceRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}
