package productservice

import (
	"context"
	"errors"
	"math"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/validation"
	"gorecords/internal/service/integrity"
)

const maxQuantity = 999999

// Service implementa as operações públicas do catálogo de produtos.
type Service struct {
	uow    domain.UnitOfWork
	repos  domain.Repositories
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(uow domain.UnitOfWork, repos domain.Repositories, logger logger.Logger) *Service {
	return &Service{uow: uow, repos: repos, logger: logger}
}

func (s *Service) fail(msg string, err error, fields map[string]interface{}) error {
	var storageErr *apperror.StorageError
	if errors.As(err, &storageErr) {
		s.logger.Error(msg, err)
		return err
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["error"] = err.Error()
	s.logger.Warn(msg, fields)
	return err
}

func (s *Service) list(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.repos.Products.FindAll(ctx, filter)
	if err != nil {
		return nil, s.fail("Falha ao listar produtos.", err, nil)
	}
	return products, nil
}

func (s *Service) count(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	count, err := s.repos.Products.Count(ctx, filter)
	if err != nil {
		return 0, s.fail("Falha ao contar produtos.", err, nil)
	}
	return count, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	s.logger.Debug("Listando produtos.", nil)
	return s.list(ctx, domain.ProductFilter{})
}

// GetByID busca um produto pelo ID.
func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	s.logger.Debug("Buscando produto por ID.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return domain.Product{}, s.fail("ID de produto inválido.", err, map[string]interface{}{"id": id})
	}

	product, err := integrity.NewResolver(s.repos).Product(ctx, id)
	if err != nil {
		return domain.Product{}, s.fail("Produto não encontrado.", err, map[string]interface{}{"id": id})
	}
	return product, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (domain.Product, error) {
	s.logger.Debug("Buscando produto por nome.", map[string]interface{}{"name": name})

	product, err := integrity.NewResolver(s.repos).ProductByName(ctx, name)
	if err != nil {
		return domain.Product{}, s.fail("Produto não encontrado por nome.", err, map[string]interface{}{"name": name})
	}
	return product, nil
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	s.logger.Debug("Buscando produto por SKU.", map[string]interface{}{"sku": sku})

	product, err := integrity.NewResolver(s.repos).ProductBySKU(ctx, sku)
	if err != nil {
		return domain.Product{}, s.fail("Produto não encontrado por SKU.", err, map[string]interface{}{"sku": sku})
	}
	return product, nil
}

// ListByCategory compara a categoria sem diferenciar maiúsculas.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	s.logger.Debug("Listando produtos por categoria.", map[string]interface{}{"category": category})
	return s.list(ctx, domain.ProductFilter{Category: category})
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Product, error) {
	active := true
	return s.list(ctx, domain.ProductFilter{Active: &active})
}

// ListInStock lista os produtos ativos com quantidade maior que zero.
func (s *Service) ListInStock(ctx context.Context) ([]domain.Product, error) {
	active, inStock := true, true
	return s.list(ctx, domain.ProductFilter{Active: &active, InStock: &inStock})
}

// ListOutOfStock lista os produtos ativos com quantidade zero.
func (s *Service) ListOutOfStock(ctx context.Context) ([]domain.Product, error) {
	active, inStock := true, false
	return s.list(ctx, domain.ProductFilter{Active: &active, InStock: &inStock})
}

// ListByPriceRange lista os produtos ativos com preço em [minPrice, maxPrice].
func (s *Service) ListByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]domain.Product, error) {
	s.logger.Debug("Listando produtos por faixa de preço.", map[string]interface{}{"min_price": minPrice, "max_price": maxPrice})

	fields := map[string]string{}
	switch {
	case !finite(minPrice):
		fields["minPrice"] = "deve ser um número finito"
	case minPrice < 0:
		fields["minPrice"] = "deve ser maior ou igual a 0"
	}
	switch {
	case !finite(maxPrice):
		fields["maxPrice"] = "deve ser um número finito"
	case maxPrice < minPrice:
		fields["maxPrice"] = "deve ser maior ou igual a minPrice"
	}
	if len(fields) > 0 {
		return nil, s.fail("Faixa de preço inválida.", apperror.NewValidationErrors(fields), nil)
	}

	active := true
	return s.list(ctx, domain.ProductFilter{Active: &active, MinPrice: &minPrice, MaxPrice: &maxPrice})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Search lista os produtos cujo nome contém keyword, sem diferenciar maiúsculas.
func (s *Service) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	s.logger.Debug("Buscando produtos por palavra-chave.", map[string]interface{}{"keyword": keyword})
	return s.list(ctx, domain.ProductFilter{NameContains: keyword})
}

// Create cadastra um produto; is_active é true quando não informado.
func (s *Service) Create(ctx context.Context, req domain.ProductRequest) (domain.Product, error) {
	s.logger.Debug("Iniciando criação de produto no serviço.", map[string]interface{}{"name": req.Name})

	if err := validation.Struct(req); err != nil {
		return domain.Product{}, s.fail("Payload de produto inválido.", err, map[string]interface{}{"name": req.Name})
	}

	product := domain.Product{IsActive: true}
	req.Apply(&product)

	var created domain.Product
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if err := integrity.NewUniquenessGuard(tx).Product(ctx, product, nil); err != nil {
			return err
		}
		var err error
		created, err = tx.Products.Save(ctx, product)
		return err
	})
	if err != nil {
		return domain.Product{}, s.fail("Falha ao criar produto.", err, map[string]interface{}{"name": req.Name})
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// Update substitui todos os campos do produto; is_active só muda quando informado.
func (s *Service) Update(ctx context.Context, id string, req domain.ProductRequest) (domain.Product, error) {
	s.logger.Debug("Iniciando atualização de produto no serviço.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return domain.Product{}, s.fail("ID de produto inválido.", err, map[string]interface{}{"id": id})
	}
	if err := validation.Struct(req); err != nil {
		return domain.Product{}, s.fail("Payload de produto inválido.", err, map[string]interface{}{"id": id})
	}

	var updated domain.Product
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		existing, err := integrity.NewResolver(tx).Product(ctx, id)
		if err != nil {
			return err
		}

		product := existing
		req.Apply(&product)
		if err := integrity.NewUniquenessGuard(tx).Product(ctx, product, &existing); err != nil {
			return err
		}

		updated, err = tx.Products.Save(ctx, product)
		return err
	})
	if err != nil {
		return domain.Product{}, s.fail("Falha ao atualizar produto.", err, map[string]interface{}{"id": id})
	}

	s.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"id": updated.ID})
	return updated, nil
}

// Delete remove o produto definitivamente.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("Iniciando remoção de produto no serviço.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return s.fail("ID de produto inválido.", err, map[string]interface{}{"id": id})
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if _, err := integrity.NewResolver(tx).Product(ctx, id); err != nil {
			return err
		}
		return tx.Products.Delete(ctx, id)
	})
	if err != nil {
		return s.fail("Falha ao remover produto.", err, map[string]interface{}{"id": id})
	}

	s.logger.Info("Produto removido com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// Deactivate faz a remoção lógica (is_active = false).
func (s *Service) Deactivate(ctx context.Context, id string) (domain.Product, error) {
	return s.modify(ctx, id, "Produto desativado com sucesso.", func(p *domain.Product) {
		p.IsActive = false
	})
}

func (s *Service) Activate(ctx context.Context, id string) (domain.Product, error) {
	return s.modify(ctx, id, "Produto ativado com sucesso.", func(p *domain.Product) {
		p.IsActive = true
	})
}

// SetQuantity ajusta o estoque para um valor absoluto entre 0 e 999999.
func (s *Service) SetQuantity(ctx context.Context, id string, quantity int) (domain.Product, error) {
	if quantity < 0 || quantity > maxQuantity {
		err := apperror.NewValidationError("quantity", "deve estar entre 0 e 999999")
		return domain.Product{}, s.fail("Quantidade inválida.", err, map[string]interface{}{"id": id, "quantity": quantity})
	}
	return s.modify(ctx, id, "Quantidade do produto atualizada com sucesso.", func(p *domain.Product) {
		p.Quantity = quantity
	})
}

// modify resolve o produto, aplica change e grava, tudo na mesma unidade de trabalho.
func (s *Service) modify(ctx context.Context, id, successMsg string, change func(p *domain.Product)) (domain.Product, error) {
	s.logger.Debug("Alterando produto.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return domain.Product{}, s.fail("ID de produto inválido.", err, map[string]interface{}{"id": id})
	}

	var updated domain.Product
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		product, err := integrity.NewResolver(tx).Product(ctx, id)
		if err != nil {
			return err
		}
		change(&product)
		updated, err = tx.Products.Save(ctx, product)
		return err
	})
	if err != nil {
		return domain.Product{}, s.fail("Falha ao alterar produto.", err, map[string]interface{}{"id": id})
	}

	s.logger.Info(successMsg, map[string]interface{}{"id": id, "is_active": updated.IsActive, "quantity": updated.Quantity})
	return updated, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, domain.ProductFilter{})
}

func (s *Service) CountActive(ctx context.Context) (int64, error) {
	active := true
	return s.count(ctx, domain.ProductFilter{Active: &active})
}

// CountByCategory compara a categoria sem diferenciar maiúsculas.
func (s *Service) CountByCategory(ctx context.Context, category string) (int64, error) {
	return s.count(ctx, domain.ProductFilter{Category: category})
}
