// Package response escreve os envelopes JSON padronizados da API.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
)

// JSON escreve um APIResponse de sucesso.
func JSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIResponse{Success: true, Message: message, Data: data})
}

// Error traduz err para o ErrorResponse padronizado. Erros 5xx são logados
// como Error com a causa raiz; erros de cliente ficam em Debug.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}

	body := domain.ErrorResponse{
		Success:   false,
		Code:      status,
		Category:  category,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	var vErr *apperror.ValidationError
	if errors.As(err, &vErr) {
		body.ValidationErrors = vErr.Fields
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Decode lê o corpo JSON da requisição em v.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.NewValidationError("body", "Payload inválido. Verifique o formato JSON.")
	}
	return nil
}
