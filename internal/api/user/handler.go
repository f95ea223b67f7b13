package user

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gorecords/internal/domain"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/response"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
	SearchByName(ctx context.Context, name string) ([]domain.User, error)
	Create(ctx context.Context, req domain.UserRequest) (domain.User, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// Handler agrupa os handlers HTTP de usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// handleServiceResponse envia o envelope de sucesso ou o erro padronizado.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, err error) {
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("Requisição concluída com sucesso", map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	response.JSON(w, status, message, data)
}

// List godoc
// @Summary Lista usuários
// @Tags users
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.User}
// @Failure 500 {object} domain.ErrorResponse
// @Router /api/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Usuários listados com sucesso.", users, err)
}

// GetByID godoc
// @Summary Busca usuário por ID
// @Tags users
// @Produce json
// @Param id path string true "ID do usuário (UUID)"
// @Success 200 {object} domain.APIResponse{data=domain.User}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	h.handleServiceResponse(w, r, http.StatusOK, "Usuário encontrado com sucesso.", u, err)
}

// GetByEmail godoc
// @Summary Busca usuário por email
// @Tags users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} domain.APIResponse{data=domain.User}
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/users/email/{email} [get]
func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	h.handleServiceResponse(w, r, http.StatusOK, "Usuário encontrado com sucesso.", u, err)
}

// ListByRole godoc
// @Summary Lista usuários por papel
// @Tags users
// @Produce json
// @Param role path string true "ADMIN ou CUSTOMER (qualquer caixa)"
// @Success 200 {object} domain.APIResponse{data=[]domain.User}
// @Failure 400 {object} domain.ErrorResponse
// @Router /api/users/role/{role} [get]
func (h *Handler) ListByRole(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListByRole(r.Context(), chi.URLParam(r, "role"))
	h.handleServiceResponse(w, r, http.StatusOK, "Usuários listados com sucesso.", users, err)
}

// Search godoc
// @Summary Busca usuários por parte do nome
// @Tags users
// @Produce json
// @Param name query string true "Trecho do nome"
// @Success 200 {object} domain.APIResponse{data=[]domain.User}
// @Router /api/users/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.SearchByName(r.Context(), r.URL.Query().Get("name"))
	h.handleServiceResponse(w, r, http.StatusOK, "Usuários listados com sucesso.", users, err)
}

// Count godoc
// @Summary Conta usuários
// @Tags users
// @Produce json
// @Success 200 {object} domain.APIResponse{data=int}
// @Router /api/users/count [get]
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.Count(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Total de usuários.", n, err)
}

// Create godoc
// @Summary Cria usuário
// @Tags users
// @Accept json
// @Produce json
// @Param user body domain.UserRequest true "Dados do usuário"
// @Success 201 {object} domain.APIResponse{data=domain.User}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.UserRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	u, err := h.Service.Create(r.Context(), req)
	h.handleServiceResponse(w, r, http.StatusCreated, "Usuário criado com sucesso.", u, err)
}

// Update godoc
// @Summary Atualiza usuário (parcial)
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "ID do usuário (UUID)"
// @Param user body domain.UserUpdate true "Campos a alterar"
// @Success 200 {object} domain.APIResponse{data=domain.User}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var upd domain.UserUpdate
	if err := response.Decode(r, &upd); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	u, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), upd)
	h.handleServiceResponse(w, r, http.StatusOK, "Usuário atualizado com sucesso.", u, err)
}

// Delete godoc
// @Summary Remove usuário e seus endereços
// @Tags users
// @Produce json
// @Param id path string true "ID do usuário (UUID)"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	h.handleServiceResponse(w, r, http.StatusOK, "Usuário removido com sucesso.", nil, err)
}
