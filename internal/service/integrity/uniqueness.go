package integrity

import (
	"context"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
)

// UniquenessGuard faz a checagem prévia dos campos únicos (email do usuário,
// nome e SKU do produto). Entre a checagem e o Save ainda existe uma janela;
// nela quem decide é o índice único do banco, mapeado para o mesmo erro.
type UniquenessGuard struct {
	repos domain.Repositories
}

func NewUniquenessGuard(repos domain.Repositories) UniquenessGuard {
	return UniquenessGuard{repos: repos}
}

type existsFn func(ctx context.Context, field, value string) (bool, error)

// check: na criação (current == nil) qualquer ocorrência colide; na atualização
// só colide quando o valor muda em relação ao armazenado.
func check(ctx context.Context, exists existsFn, entity, field, value string, current *string) error {
	if current != nil && *current == value {
		return nil
	}
	found, err := exists(ctx, field, value)
	if err != nil {
		return err
	}
	if found {
		return apperror.NewDuplicateResourceError(entity, field, value)
	}
	return nil
}

// User valida o email de user. existing é o estado armazenado (nil na criação).
func (g UniquenessGuard) User(ctx context.Context, user domain.User, existing *domain.User) error {
	var current *string
	if existing != nil {
		current = &existing.Email
	}
	return check(ctx, g.repos.Users.ExistsByField, domain.EntityUser, domain.FieldEmail, user.Email, current)
}

// Product valida nome e SKU. SKU vazio nunca colide.
func (g UniquenessGuard) Product(ctx context.Context, product domain.Product, existing *domain.Product) error {
	var currentName, currentSKU *string
	if existing != nil {
		currentName, currentSKU = &existing.Name, &existing.SKU
	}

	if err := check(ctx, g.repos.Products.ExistsByField, domain.EntityProduct, domain.FieldName, product.Name, currentName); err != nil {
		return err
	}
	if product.SKU == "" {
		return nil
	}
	return check(ctx, g.repos.Products.ExistsByField, domain.EntityProduct, domain.FieldSKU, product.SKU, currentSKU)
}
