package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// AppError é a interface central para todos os erros customizados do serviço.
// Ela permite que o Handler acesse a Categoria, o status HTTP e o erro original.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Erros de Domínio ---

// ValidationError representa falhas de validação de dados de entrada, campo -> mensagem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("Erro de Validação: %s", strings.Join(parts, "; "))
}
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um erro de validação para um único campo.
func NewValidationError(field, msg string) AppError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// NewValidationErrors cria um erro de validação com vários campos.
func NewValidationErrors(fields map[string]string) AppError {
	return &ValidationError{Fields: fields}
}

// NotFoundError indica que a entidade referenciada ou alvo não existe.
type NotFoundError struct {
	Entity string
	Field  string
	Value  interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s não encontrado com %s: '%v'", e.Entity, e.Field, e.Value)
}
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um erro de recurso não encontrado.
func NewNotFoundError(entity, field string, value interface{}) AppError {
	return &NotFoundError{Entity: entity, Field: field, Value: value}
}

// DuplicateResourceError indica que uma restrição de unicidade seria violada.
type DuplicateResourceError struct {
	Entity string
	Field  string
	Value  interface{}
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("%s já existe com %s: '%v'", e.Entity, e.Field, e.Value)
}
func (e *DuplicateResourceError) Category() string { return "DUPLICATE_RESOURCE" }
func (e *DuplicateResourceError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *DuplicateResourceError) Unwrap() error    { return nil }

// NewDuplicateResourceError cria um erro de recurso duplicado.
func NewDuplicateResourceError(entity, field string, value interface{}) AppError {
	return &DuplicateResourceError{Entity: entity, Field: field, Value: value}
}

// UnauthorizedError indica credenciais ausentes ou inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um erro 401.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError indica um token válido sem a permissão exigida.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um erro 403.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// RateLimitError indica que o cliente excedeu o limite de requisições da janela.
type RateLimitError struct {
	Limit int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Limite de %d requisições por janela excedido.", e.Limit)
}
func (e *RateLimitError) Category() string { return "RATE_LIMITED" }
func (e *RateLimitError) HTTPStatus() int  { return http.StatusTooManyRequests } // 429
func (e *RateLimitError) Unwrap() error    { return nil }

func NewRateLimitError(limit int) AppError {
	return &RateLimitError{Limit: limit}
}

// --- Erros de Infraestrutura (Encapsulamento) ---

// StorageError representa uma falha do armazenamento (conexão, timeout, SQL).
// A mensagem nunca expõe o erro do driver; ele fica disponível via Unwrap.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string    { return fmt.Sprintf("Falha de armazenamento: %s", e.Op) }
func (e *StorageError) Category() string { return "STORAGE_FAILURE" }
func (e *StorageError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *StorageError) Unwrap() error    { return e.Err }

// NewStorageError encapsula um erro do driver ou do banco.
func NewStorageError(op string, err error) AppError {
	return &StorageError{Op: op, Err: err}
}

// --- Helpers ---

// IsNotFound informa se algum erro da cadeia é um NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsDuplicate informa se algum erro da cadeia é um DuplicateResourceError.
func IsDuplicate(err error) bool {
	var target *DuplicateResourceError
	return stderrors.As(err, &target)
}

// MapToHTTPStatus traduz um erro para o código HTTP, a categoria e a mensagem.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico, sem vazar detalhes.
	return http.StatusInternalServerError, "INTERNAL_ERROR", "Ocorreu um erro inesperado."
}
