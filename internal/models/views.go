package models

import "time"

// Screen первый экран, который должен показать клиент.
type Screen string

const (
	ScreenAccessGate       Screen = "access_gate"
	ScreenCredentialPrompt Screen = "credential_prompt"
	ScreenPasswordPrompt   Screen = "password_prompt"
	ScreenChat             Screen = "chat"
)

// SubscriptionStatus снимок подписки и счётчика сообщений.
type SubscriptionStatus struct {
	Valid                 bool       `json:"subscriptionValid"`
	StartDate             *time.Time `json:"subscriptionStartDate,omitempty"`
	ExpiresAt             *time.Time `json:"expiresAt,omitempty"`
	PasswordProtected     bool       `json:"passwordProtected"`
	PasswordVerified      bool       `json:"passwordVerified"`
	MessageCount          int        `json:"messageCount"`
	FreeMessageLimit      int        `json:"freeMessageLimit"`
	FreeMessagesRemaining int        `json:"freeMessagesRemaining"`
	Blocked               bool       `json:"blocked"`
	ModalVisible          bool       `json:"modalVisible"`
	ProcessingPayment     bool       `json:"processingPayment"`
}

// ChatView состояние чата для клиента.
type ChatView struct {
	Messages     []Message `json:"messages"`
	Loading      bool      `json:"isLoading"`
	HasAPIKey    bool      `json:"hasApiKey"`
	InputEnabled bool      `json:"inputEnabled"`
}

// SessionView сводка, по которой клиент выбирает экран.
type SessionView struct {
	Screen           Screen             `json:"screen"`
	Authenticated    bool               `json:"isAuthenticated"`
	AuthModalVisible bool               `json:"authModalVisible"`
	HasAPIKey        bool               `json:"hasApiKey"`
	Subscription     SubscriptionStatus `json:"subscription"`
}

// VoiceSettings настройки озвучивания ответов.
type VoiceSettings struct {
	Enabled         bool   `json:"voiceEnabled"`
	AutoPlayEnabled bool   `json:"autoPlayEnabled"`
	HasAPIKey       bool   `json:"hasVoiceApiKey"`
	VoiceID         string `json:"voiceId"`
	Playing         bool   `json:"isPlaying"`
	HasAudio        bool   `json:"hasAudio"`
}

// Symbol символ барабана с множителем выплаты.
type Symbol struct {
	Name       string `json:"name"`
	Multiplier int    `json:"multiplier"`
}

// SlotEventKind тип события мини-игры.
type SlotEventKind string

const (
	SlotWin     SlotEventKind = "win"
	SlotNoWin   SlotEventKind = "no_win"
	SlotDeposit SlotEventKind = "deposit"
)

// SlotEvent событие мини-игры с репликой персонажа.
type SlotEvent struct {
	Kind     SlotEventKind `json:"kind"`
	Amount   int           `json:"amount"`
	Symbol   string        `json:"symbol,omitempty"`
	Reaction string        `json:"reaction"`
	At       time.Time     `json:"at"`
}

// SlotState снимок мини-игры. Reels[i][j] содержит символ j-й строки i-го барабана.
type SlotState struct {
	Credits   int          `json:"credits"`
	Bet       int          `json:"bet"`
	MinBet    int          `json:"minBet"`
	MaxBet    int          `json:"maxBet"`
	Spinning  bool         `json:"spinning"`
	AutoSpin  bool         `json:"autoSpin"`
	Reels     [3][3]Symbol `json:"reels"`
	LastEvent *SlotEvent   `json:"lastEvent,omitempty"`
}
