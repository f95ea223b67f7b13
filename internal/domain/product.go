package domain

import (
	"time"
)

// Product representa um item do catálogo.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category"`
	SKU         string    `json:"sku,omitempty"` // Stock Keeping Unit, opcional mas único
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductRequest é o payload de criação e de atualização (substituição completa).
// IsActive só é aplicado quando informado.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"max=1000"`
	Price       float64 `json:"price" validate:"required,gte=0.01,price"`
	Quantity    *int    `json:"quantity" validate:"required,gte=0,lte=999999"`
	Category    string  `json:"category" validate:"max=50"`
	SKU         string  `json:"sku" validate:"omitempty,max=20,sku"`
	IsActive    *bool   `json:"is_active"`
}

// Apply sobrescreve todos os campos do produto; IsActive apenas quando informado.
func (p ProductRequest) Apply(product *Product) {
	product.Name = p.Name
	product.Description = p.Description
	product.Price = p.Price
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
	product.Category = p.Category
	product.SKU = p.SKU
	if p.IsActive != nil {
		product.IsActive = *p.IsActive
	}
}

// ProductFilter define os critérios de busca de produtos. O filtro zero retorna todos.
type ProductFilter struct {
	Name         string // igualdade exata
	SKU          string // igualdade exata
	Category     string // igualdade sem diferenciar maiúsculas
	NameContains string
	Active       *bool
	InStock      *bool // true: quantity > 0, false: quantity = 0
	MinPrice     *float64
	MaxPrice     *float64
}
