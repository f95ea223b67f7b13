// Package integrity reúne as regras de consistência que atravessam mais de uma
// linha ou campo: resolução de entidades, unicidade e o endereço padrão do usuário.
// Todos os componentes trabalham sobre os repositórios de uma unidade de trabalho.
package integrity

import (
	"context"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
)

// Resolver busca entidades e transforma ausência em NotFoundError.
// Deve ser chamado antes de qualquer escrita.
type Resolver struct {
	repos domain.Repositories
}

// NewResolver cria o resolver sobre os repositórios informados.
func NewResolver(repos domain.Repositories) Resolver {
	return Resolver{repos: repos}
}

// User busca o usuário pelo ID.
func (r Resolver) User(ctx context.Context, id string) (domain.User, error) {
	return r.repos.Users.FindByID(ctx, id)
}

// UserExists falha com NotFound{User, id} quando o usuário não existe.
func (r Resolver) UserExists(ctx context.Context, id string) error {
	_, err := r.repos.Users.FindByID(ctx, id)
	return err
}

// UserByEmail busca o usuário pelo email exato.
func (r Resolver) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	users, err := r.repos.Users.FindAll(ctx, domain.UserFilter{Email: email})
	if err != nil {
		return domain.User{}, err
	}
	if len(users) == 0 {
		return domain.User{}, apperror.NewNotFoundError(domain.EntityUser, domain.FieldEmail, email)
	}
	return users[0], nil
}

// Product busca o produto pelo ID.
func (r Resolver) Product(ctx context.Context, id string) (domain.Product, error) {
	return r.repos.Products.FindByID(ctx, id)
}

// ProductByName busca o produto pelo nome exato.
func (r Resolver) ProductByName(ctx context.Context, name string) (domain.Product, error) {
	return r.firstProduct(ctx, domain.ProductFilter{Name: name}, domain.FieldName, name)
}

// ProductBySKU busca o produto pelo SKU. SKU vazio nunca é encontrado.
func (r Resolver) ProductBySKU(ctx context.Context, sku string) (domain.Product, error) {
	if sku == "" {
		return domain.Product{}, apperror.NewNotFoundError(domain.EntityProduct, domain.FieldSKU, sku)
	}
	return r.firstProduct(ctx, domain.ProductFilter{SKU: sku}, domain.FieldSKU, sku)
}

func (r Resolver) firstProduct(ctx context.Context, filter domain.ProductFilter, field, value string) (domain.Product, error) {
	products, err := r.repos.Products.FindAll(ctx, filter)
	if err != nil {
		return domain.Product{}, err
	}
	if len(products) == 0 {
		return domain.Product{}, apperror.NewNotFoundError(domain.EntityProduct, field, value)
	}
	return products[0], nil
}

// Address busca o endereço pelo ID, sem checar o dono.
func (r Resolver) Address(ctx context.Context, id string) (domain.Address, error) {
	return r.repos.Addresses.FindByID(ctx, id)
}

// UserAddress busca e bloqueia o endereço id somente se ele pertencer ao usuário.
// Um endereço de outro usuário é tratado como inexistente.
func (r Resolver) UserAddress(ctx context.Context, userID, id string) (domain.Address, error) {
	addresses, err := r.repos.Addresses.FindAll(ctx, domain.AddressFilter{ID: id, UserID: userID, ForUpdate: true})
	if err != nil {
		return domain.Address{}, err
	}
	if len(addresses) == 0 {
		return domain.Address{}, apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, id)
	}
	return addresses[0], nil
}

// DefaultAddress retorna o endereço padrão do usuário.
func (r Resolver) DefaultAddress(ctx context.Context, userID string) (domain.Address, error) {
	isDefault := true
	addresses, err := r.repos.Addresses.FindAll(ctx, domain.AddressFilter{UserID: userID, IsDefault: &isDefault})
	if err != nil {
		return domain.Address{}, err
	}
	if len(addresses) == 0 {
		return domain.Address{}, apperror.NewNotFoundError(domain.EntityDefaultAddress, domain.FieldUserID, userID)
	}
	return addresses[0], nil
}
