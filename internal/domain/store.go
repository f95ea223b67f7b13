package domain

import "context"

// Nomes de entidade e de campo usados nos erros tipados e nas checagens de unicidade.
const (
	EntityUser           = "User"
	EntityProduct        = "Product"
	EntityAddress        = "Address"
	EntityDefaultAddress = "Default Address for User"

	FieldID     = "id"
	FieldUserID = "userId"
	FieldEmail  = "email"
	FieldName   = "name"
	FieldSKU    = "sku"
)

// UserRepository é o contrato de persistência de usuários.
// FindByID retorna NotFoundError quando o usuário não existe.
// Save insere quando ID está vazio e substitui a linha inteira caso contrário.
// Lock bloqueia a linha do usuário até o fim da unidade de trabalho e serializa
// as transições de endereço padrão desse usuário.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (User, error)
	Lock(ctx context.Context, id string) error
	FindAll(ctx context.Context, filter UserFilter) ([]User, error)
	ExistsByField(ctx context.Context, field, value string) (bool, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	Save(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository é o contrato de persistência de produtos.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	ExistsByField(ctx context.Context, field, value string) (bool, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Save(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id string) error
}

// AddressRepository é o contrato de persistência de endereços.
type AddressRepository interface {
	FindByID(ctx context.Context, id string) (Address, error)
	FindAll(ctx context.Context, filter AddressFilter) ([]Address, error)
	Count(ctx context.Context, filter AddressFilter) (int64, error)
	Save(ctx context.Context, address Address) (Address, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Repositories agrupa os repositórios ligados a uma mesma unidade de trabalho.
type Repositories struct {
	Users     UserRepository
	Products  ProductRepository
	Addresses AddressRepository
}

// UnitOfWork executa fn dentro de uma transação: commit se fn retornar nil,
// rollback em erro ou panic.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
