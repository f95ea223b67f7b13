package product

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/middleware"
	"gorecords/internal/pkg/response"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (domain.Product, error)
	GetByName(ctx context.Context, name string) (domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListInStock(ctx context.Context) ([]domain.Product, error)
	ListOutOfStock(ctx context.Context) ([]domain.Product, error)
	ListByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]domain.Product, error)
	Search(ctx context.Context, keyword string) ([]domain.Product, error)
	Create(ctx context.Context, req domain.ProductRequest) (domain.Product, error)
	Update(ctx context.Context, id string, req domain.ProductRequest) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) (domain.Product, error)
	Activate(ctx context.Context, id string) (domain.Product, error)
	SetQuantity(ctx context.Context, id string, quantity int) (domain.Product, error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
}

// Handler agrupa os handlers HTTP de produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, err error) {
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	fields := map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}
	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		fields["user_id"] = claims.UserID
	}
	h.Logger.Info("Requisição concluída com sucesso", fields)
	response.JSON(w, status, message, data)
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, apperror.NewValidationError(name, "campo obrigatório")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.NewValidationError(name, "deve ser um número")
	}
	// ParseFloat aceita "NaN" e "Inf".
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperror.NewValidationError(name, "deve ser um número finito")
	}
	return v, nil
}

// List godoc
// @Summary Lista produtos
// @Tags products
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Router /api/products [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.List(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Produtos listados com sucesso.", products, err)
}

// GetByID godoc
// @Summary Busca produto por ID
// @Tags products
// @Produce json
// @Param id path string true "ID do produto (UUID)"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/products/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	h.handleServiceResponse(w, r, http.StatusOK, "Produto encontrado com sucesso.", p, err)
}

// GetByName godoc
// @Summary Busca produto pelo nome exato
// @Tags products
// @Produce json
// @Param name path string true "Nome"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/products/name/{name} [get]
func (h *Handler) GetByName(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetByName(r.Context(), chi.URLParam(r, "name"))
	h.handleServiceResponse(w, r, http.StatusOK, "Produto encontrado com sucesso.", p, err)
}

// GetBySKU godoc
// @Summary Busca produto pelo SKU
// @Tags products
// @Produce json
// @Param sku path string true "SKU"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/products/sku/{sku} [get]
func (h *Handler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetBySKU(r.Context(), chi.URLParam(r, "sku"))
	h.handleServiceResponse(w, r, http.StatusOK, "Produto encontrado com sucesso.", p, err)
}

// ListByCategory godoc
// @Summary Lista produtos de uma categoria
// @Tags products
// @Produce json
// @Param category path string true "Categoria (sem diferenciar caixa)"
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Router /api/products/category/{category} [get]
func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListByCategory(r.Context(), chi.URLParam(r, "category"))
	h.handleServiceResponse(w, r, http.StatusOK, "Produtos listados com sucesso.", products, err)
}

// ListActive godoc
// @Summary Lista produtos ativos
// @Tags products
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Router /api/products/active [get]
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListActive(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Produtos listados com sucesso.", products, err)
}

// ListInStock godoc
// @Summary Lista produtos ativos com estoque
// @Tags products
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Router /api/products/in-stock [get]
func (h *Handler) ListInStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListInStock(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Produtos listados com sucesso.", products, err)
}

// ListOutOfStock godoc
// @Summary Lista produtos ativos sem estoque
// @Tags products
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Router /api/products/out-of-stock [get]
func (h *Handler) ListOutOfStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListOutOfStock(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Produtos listados com sucesso.", products, err)
}

// ListByPriceRange godoc
// @Summary Lista produtos ativos numa faixa de preço (inclusiva)
// @Tags products
// @Produce json
// @Param minPrice query number true "Preço mínimo"
// @Param maxPrice query number true "Preço máximo"
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Failure 400 {object} domain.ErrorResponse
// @Router /api/products/price-range [get]
func (h *Handler) ListByPriceRange(w http.ResponseWriter, r *http.Request) {
	minPrice, err := queryFloat(r, "minPrice")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	maxPrice, err := queryFloat(r, "maxPrice")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	products, err := h.Service.ListByPriceRange(r.Context(), minPrice, maxPrice)
	h.handleServiceResponse(w, r, http.StatusOK, "Produtos listados com sucesso.", products, err)
}

// Search godoc
// @Summary Busca produtos cujo nome contém a palavra-chave
// @Tags products
// @Produce json
// @Param keyword query string true "Palavra-chave"
// @Success 200 {object} domain.APIResponse{data=[]domain.Product}
// @Router /api/products/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.Search(r.Context(), r.URL.Query().Get("keyword"))
	h.handleServiceResponse(w, r, http.StatusOK, "Produtos listados com sucesso.", products, err)
}

// Count godoc
// @Summary Conta produtos
// @Tags products
// @Produce json
// @Success 200 {object} domain.APIResponse{data=int}
// @Router /api/products/count [get]
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.Count(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Total de produtos.", n, err)
}

// CountActive godoc
// @Summary Conta produtos ativos
// @Tags products
// @Produce json
// @Success 200 {object} domain.APIResponse{data=int}
// @Router /api/products/count/active [get]
func (h *Handler) CountActive(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.CountActive(r.Context())
	h.handleServiceResponse(w, r, http.StatusOK, "Total de produtos ativos.", n, err)
}

// CountByCategory godoc
// @Summary Conta produtos de uma categoria
// @Tags products
// @Produce json
// @Param category path string true "Categoria"
// @Success 200 {object} domain.APIResponse{data=int}
// @Router /api/products/count/category/{category} [get]
func (h *Handler) CountByCategory(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.CountByCategory(r.Context(), chi.URLParam(r, "category"))
	h.handleServiceResponse(w, r, http.StatusOK, "Total de produtos na categoria.", n, err)
}

// Create godoc
// @Summary Cria produto
// @Tags products
// @Accept json
// @Produce json
// @Param product body domain.ProductRequest true "Dados do produto"
// @Success 201 {object} domain.APIResponse{data=domain.Product}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/products [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	p, err := h.Service.Create(r.Context(), req)
	h.handleServiceResponse(w, r, http.StatusCreated, "Produto criado com sucesso.", p, err)
}

// Update godoc
// @Summary Substitui os dados do produto
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "ID do produto (UUID)"
// @Param product body domain.ProductRequest true "Dados completos do produto"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/products/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	p, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), req)
	h.handleServiceResponse(w, r, http.StatusOK, "Produto atualizado com sucesso.", p, err)
}

// Delete godoc
// @Summary Remove produto
// @Tags products
// @Produce json
// @Param id path string true "ID do produto (UUID)"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/products/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	h.handleServiceResponse(w, r, http.StatusOK, "Produto removido com sucesso.", nil, err)
}

// Deactivate godoc
// @Summary Desativa produto
// @Tags products
// @Produce json
// @Param id path string true "ID do produto (UUID)"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/products/{id}/deactivate [patch]
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Deactivate(r.Context(), chi.URLParam(r, "id"))
	h.handleServiceResponse(w, r, http.StatusOK, "Produto desativado com sucesso.", p, err)
}

// Activate godoc
// @Summary Ativa produto
// @Tags products
// @Produce json
// @Param id path string true "ID do produto (UUID)"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/products/{id}/activate [patch]
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Activate(r.Context(), chi.URLParam(r, "id"))
	h.handleServiceResponse(w, r, http.StatusOK, "Produto ativado com sucesso.", p, err)
}

// SetQuantity godoc
// @Summary Define a quantidade em estoque
// @Tags products
// @Produce json
// @Param id path string true "ID do produto (UUID)"
// @Param quantity query int true "Nova quantidade (0 a 999999)"
// @Success 200 {object} domain.APIResponse{data=domain.Product}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/products/{id}/quantity [patch]
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		response.Error(w, r, h.Logger, apperror.NewValidationError("quantity", "deve ser um número inteiro"))
		return
	}
	p, err := h.Service.SetQuantity(r.Context(), chi.URLParam(r, "id"), qty)
	h.handleServiceResponse(w, r, http.StatusOK, "Quantidade atualizada com sucesso.", p, err)
}
