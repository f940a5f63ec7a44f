// Package models содержит доменные структуры чата, представления состояний гейтов
// и DTO запросов HTTP-обработчиков.
package models

import "time"

// Role роль автора сообщения.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message запись журнала чата. Журнал упорядочен по времени вставки,
// идентификаторы не повторяются.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ImageURI  string    `json:"imageUri,omitempty"`
}
