package domain

import "time"

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Success          bool              `json:"success" example:"false"`
	Code             int               `json:"code" example:"404"`
	Category         string            `json:"category" example:"NOT_FOUND"`
	Message          string            `json:"message" example:"User não encontrado com id: '8f14e45f-ceea-467f-a8f3-5b2c0e4d3a11'"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

// APIResponse é o envelope das respostas de sucesso.
// @Description Envelope das respostas de sucesso.
type APIResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Usuário encontrado com sucesso."`
	Data    interface{} `json:"data,omitempty"`
}
