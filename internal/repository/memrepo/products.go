package memrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
)

// ProductRepository implementa domain.ProductRepository em memória.
type ProductRepository struct {
	v view
}

func matchProduct(p domain.Product, f domain.ProductFilter) bool {
	switch {
	case f.Name != "" && p.Name != f.Name:
		return false
	case f.SKU != "" && p.SKU != f.SKU:
		return false
	case f.Category != "" && !strings.EqualFold(p.Category, f.Category):
		return false
	case f.NameContains != "" && !containsFold(p.Name, f.NameContains):
		return false
	case f.Active != nil && p.IsActive != *f.Active:
		return false
	case f.InStock != nil && *f.InStock && p.Quantity <= 0:
		return false
	case f.InStock != nil && !*f.InStock && p.Quantity != 0:
		return false
	case f.MinPrice != nil && p.Price < *f.MinPrice:
		return false
	case f.MaxPrice != nil && p.Price > *f.MaxPrice:
		return false
	}
	return true
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	err := r.v.with(ctx, func(st *state) error {
		p, ok := st.products.get(id)
		if !ok {
			return apperror.NewNotFoundError(domain.EntityProduct, domain.FieldID, id)
		}
		product = p
		return nil
	})
	return product, err
}

func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products := []domain.Product{}
	err := r.v.with(ctx, func(st *state) error {
		st.products.each(func(p domain.Product) bool {
			if matchProduct(p, filter) {
				products = append(products, p)
			}
			return true
		})
		return nil
	})
	return products, err
}

func (r *ProductRepository) ExistsByField(ctx context.Context, field, value string) (bool, error) {
	var get func(p domain.Product) string
	switch field {
	case domain.FieldName:
		get = func(p domain.Product) string { return p.Name }
	case domain.FieldSKU:
		get = func(p domain.Product) string { return p.SKU }
	default:
		return false, fmt.Errorf("memrepo: campo sem checagem de unicidade: %s", field)
	}

	var exists bool
	err := r.v.with(ctx, func(st *state) error {
		st.products.each(func(p domain.Product) bool {
			exists = get(p) == value
			return !exists
		})
		return nil
	})
	return exists, err
}

func (r *ProductRepository) Count(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	products, err := r.FindAll(ctx, filter)
	return int64(len(products)), err
}

func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	err := r.v.with(ctx, func(st *state) error {
		now := r.v.store.now()
		if product.ID == "" {
			product.ID = uuid.NewString()
			product.CreatedAt = now
		} else {
			current, ok := st.products.get(product.ID)
			if !ok {
				return apperror.NewNotFoundError(domain.EntityProduct, domain.FieldID, product.ID)
			}
			product.CreatedAt = current.CreatedAt
		}
		product.UpdatedAt = now

		// Índices únicos de name e sku (sku vazio equivale a NULL).
		var dupField string
		st.products.each(func(p domain.Product) bool {
			if p.ID == product.ID {
				return true
			}
			if p.Name == product.Name {
				dupField = domain.FieldName
			} else if product.SKU != "" && p.SKU == product.SKU {
				dupField = domain.FieldSKU
			}
			return dupField == ""
		})
		switch dupField {
		case domain.FieldName:
			return apperror.NewDuplicateResourceError(domain.EntityProduct, domain.FieldName, product.Name)
		case domain.FieldSKU:
			return apperror.NewDuplicateResourceError(domain.EntityProduct, domain.FieldSKU, product.SKU)
		}

		st.products.put(product.ID, product)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.v.with(ctx, func(st *state) error {
		if !st.products.remove(id) {
			return apperror.NewNotFoundError(domain.EntityProduct, domain.FieldID, id)
		}
		return nil
	})
}
