package address

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gorecords/internal/domain"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/response"
)

// AddressService define o contrato que o Handler espera da camada de Serviço.
type AddressService interface {
	List(ctx context.Context) ([]domain.Address, error)
	GetByID(ctx context.Context, id string) (domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	ListByUserAndType(ctx context.Context, userID, addressType string) ([]domain.Address, error)
	GetDefaultForUser(ctx context.Context, userID string) (domain.Address, error)
	ListByCity(ctx context.Context, city string) ([]domain.Address, error)
	ListByState(ctx context.Context, state string) ([]domain.Address, error)
	ListByCountry(ctx context.Context, country string) ([]domain.Address, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, req domain.AddressRequest) (domain.Address, error)
	Replace(ctx context.Context, id string, req domain.AddressRequest) (domain.Address, error)
	Update(ctx context.Context, id string, upd domain.AddressUpdate) (domain.Address, error)
	SetDefault(ctx context.Context, id, userID string) (domain.Address, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

// Handler agrupa os handlers HTTP de endereço.
type Handler struct {
	Service AddressService
	Logger  logger.Logger
}

func NewHandler(svc AddressService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

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
// @Summary Lista endereços
// @Tags addresses
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.Address}
// @Router /api/addresses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.Service.List(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Endereços listados com sucesso.", addresses, err)
}

// GetByID godoc
// @Summary Busca endereço por ID
// @Tags addresses
// @Produce json
// @Param id path string true "ID do endereço (UUID)"
// @Success 200 {object} domain.APIResponse{data=domain.Address}
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/addresses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereço encontrado com sucesso.", a, err)
}

// ListByUser godoc
// @Summary Lista endereços de um usuário
// @Tags addresses
// @Produce json
// @Param userId path string true "ID do usuário (UUID)"
// @Success 200 {object} domain.APIResponse{data=[]domain.Address}
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/addresses/user/{userId} [get]
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.Service.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereços listados com sucesso.", addresses, err)
}

// ListByUserAndType godoc
// @Summary Lista endereços de um usuário por tipo
// @Tags addresses
// @Produce json
// @Param userId path string true "ID do usuário (UUID)"
// @Param type path string true "Tipo do endereço"
// @Success 200 {object} domain.APIResponse{data=[]domain.Address}
// @Router /api/addresses/user/{userId}/type/{type} [get]
func (h *Handler) ListByUserAndType(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.Service.ListByUserAndType(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "type"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereços listados com sucesso.", addresses, err)
}

// GetDefaultForUser godoc
// @Summary Busca o endereço padrão de um usuário
// @Tags addresses
// @Produce json
// @Param userId path string true "ID do usuário (UUID)"
// @Success 200 {object} domain.APIResponse{data=domain.Address}
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/addresses/user/{userId}/default [get]
func (h *Handler) GetDefaultForUser(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.GetDefaultForUser(r.Context(), chi.URLParam(r, "userId"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereço padrão encontrado com sucesso.", a, err)
}

// CountByUser godoc
// @Summary Conta endereços de um usuário
// @Tags addresses
// @Produce json
// @Param userId path string true "ID do usuário (UUID)"
// @Success 200 {object} domain.APIResponse{data=int}
// @Router /api/addresses/user/{userId}/count [get]
func (h *Handler) CountByUser(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.CountByUser(r.Context(), chi.URLParam(r, "userId"))
	h.handleServiceResponse(w, r, http.StatusOK, "Total de endereços do usuário.", n, err)
}

// ListByCity godoc
// @Summary Lista endereços por cidade
// @Tags addresses
// @Produce json
// @Param city path string true "Cidade (sem diferenciar caixa)"
// @Success 200 {object} domain.APIResponse{data=[]domain.Address}
// @Router /api/addresses/city/{city} [get]
func (h *Handler) ListByCity(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.Service.ListByCity(r.Context(), chi.URLParam(r, "city"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereços listados com sucesso.", addresses, err)
}

// ListByState godoc
// @Summary Lista endereços por estado
// @Tags addresses
// @Produce json
// @Param state path string true "Estado (sem diferenciar caixa)"
// @Success 200 {object} domain.APIResponse{data=[]domain.Address}
// @Router /api/addresses/state/{state} [get]
func (h *Handler) ListByState(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.Service.ListByState(r.Context(), chi.URLParam(r, "state"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereços listados com sucesso.", addresses, err)
}

// ListByCountry godoc
// @Summary Lista endereços por país
// @Tags addresses
// @Produce json
// @Param country path string true "País (sem diferenciar caixa)"
// @Success 200 {object} domain.APIResponse{data=[]domain.Address}
// @Router /api/addresses/country/{country} [get]
func (h *Handler) ListByCountry(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.Service.ListByCountry(r.Context(), chi.URLParam(r, "country"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereços listados com sucesso.", addresses, err)
}

// Create godoc
// @Summary Cria endereço
// @Tags addresses
// @Accept json
// @Produce json
// @Param address body domain.AddressRequest true "Dados do endereço"
// @Success 201 {object} domain.APIResponse{data=domain.Address}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/addresses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.AddressRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	a, err := h.Service.Create(r.Context(), req)
	h.handleServiceResponse(w, r, http.StatusCreated, "Endereço criado com sucesso.", a, err)
}

// Replace godoc
// @Summary Atualiza endereço com o payload completo
// @Tags addresses
// @Accept json
// @Produce json
// @Param id path string true "ID do endereço (UUID)"
// @Param address body domain.AddressRequest true "Dados completos do endereço"
// @Success 200 {object} domain.APIResponse{data=domain.Address}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/addresses/{id} [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var req domain.AddressRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	a, err := h.Service.Replace(r.Context(), chi.URLParam(r, "id"), req)
	h.handleServiceResponse(w, r, http.StatusOK, "Endereço atualizado com sucesso.", a, err)
}

// Update godoc
// @Summary Atualiza parcialmente o endereço
// @Tags addresses
// @Accept json
// @Produce json
// @Param id path string true "ID do endereço (UUID)"
// @Param address body domain.AddressUpdate true "Campos a alterar"
// @Success 200 {object} domain.APIResponse{data=domain.Address}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/addresses/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var upd domain.AddressUpdate
	if err := response.Decode(r, &upd); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	a, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), upd)
	h.handleServiceResponse(w, r, http.StatusOK, "Endereço atualizado com sucesso.", a, err)
}

// SetDefault godoc
// @Summary Define o endereço padrão do usuário
// @Tags addresses
// @Produce json
// @Param id path string true "ID do endereço (UUID)"
// @Param userId path string true "ID do usuário dono (UUID)"
// @Success 200 {object} domain.APIResponse{data=domain.Address}
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/addresses/{id}/user/{userId}/set-default [patch]
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.SetDefault(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereço padrão definido com sucesso.", a, err)
}

// Delete godoc
// @Summary Remove endereço
// @Tags addresses
// @Produce json
// @Param id path string true "ID do endereço (UUID)"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/addresses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereço removido com sucesso.", nil, err)
}

// DeleteAllForUser godoc
// @Summary Remove todos os endereços de um usuário
// @Tags addresses
// @Produce json
// @Param userId path string true "ID do usuário (UUID)"
// @Success 200 {object} domain.APIResponse{data=int}
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/addresses/user/{userId} [delete]
func (h *Handler) DeleteAllForUser(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.DeleteAllForUser(r.Context(), chi.URLParam(r, "userId"))
	h.handleServiceResponse(w, r, http.StatusOK, "Endereços do usuário removidos com sucesso.", n, err)
}
