package productrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/database"
	"gorecords/internal/pkg/logger"
)

const productColumns = `id, name, description, price, quantity, category, sku, is_active, created_at, updated_at`

var uniqueColumns = map[string]string{
	domain.FieldName: "name",
	domain.FieldSKU:  "sku",
}

// ProductRepository implementa domain.ProductRepository sobre PostgreSQL.
type ProductRepository struct {
	DB        database.DBTX
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewProductRepository cria o repositório; db pode ser o pool ou uma transação.
func NewProductRepository(db database.DBTX, dbTimeout time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(s scanner) (domain.Product, error) {
	var (
		p   domain.Product
		sku sql.NullString
	)
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.Category, &sku, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	p.SKU = sku.String
	return p, err
}

// nullableSKU grava SKU vazio como NULL, para não colidir no índice único.
func nullableSKU(sku string) sql.NullString {
	return sql.NullString{String: sku, Valid: sku != ""}
}

// FindByID busca um produto pelo ID.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	product, err := scanProduct(r.DB.QueryRowContext(ctxTimeout, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NewNotFoundError(domain.EntityProduct, domain.FieldID, id)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto por ID no DB.", err)
		return domain.Product{}, apperror.NewStorageError("buscar produto", err)
	}
	return product, nil
}

func productWhere(filter domain.ProductFilter) *database.Where {
	w := &database.Where{}
	if filter.Name != "" {
		w.Add("name = %s", filter.Name)
	}
	if filter.SKU != "" {
		w.Add("sku = %s", filter.SKU)
	}
	if filter.Category != "" {
		w.Add("lower(category) = lower(%s)", filter.Category)
	}
	if filter.NameContains != "" {
		w.Add("name ILIKE %s", database.ContainsPattern(filter.NameContains))
	}
	if filter.Active != nil {
		w.Add("is_active = %s", *filter.Active)
	}
	if filter.InStock != nil {
		if *filter.InStock {
			w.Add("quantity > %s", 0)
		} else {
			w.Add("quantity = %s", 0)
		}
	}
	if filter.MinPrice != nil {
		w.Add("price >= %s", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		w.Add("price <= %s", *filter.MaxPrice)
	}
	return w
}

// FindAll lista os produtos que atendem ao filtro.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	w := productWhere(filter)
	query := `SELECT ` + productColumns + ` FROM products` + w.String() + ` ORDER BY created_at, id`

	rows, err := r.DB.QueryContext(ctxTimeout, query, w.Args()...)
	if err != nil {
		r.logger.Error("Falha ao listar produtos no DB.", err)
		return nil, apperror.NewStorageError("listar produtos", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.NewStorageError("ler produto", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStorageError("listar produtos", err)
	}
	return products, nil
}

// ExistsByField verifica se algum produto já usa o valor no campo único (name ou sku).
func (r *ProductRepository) ExistsByField(ctx context.Context, field, value string) (bool, error) {
	column, ok := uniqueColumns[field]
	if !ok {
		return false, fmt.Errorf("productrepo: campo sem checagem de unicidade: %s", field)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE ` + column + ` = $1)`
	if err := r.DB.QueryRowContext(ctxTimeout, query, value).Scan(&exists); err != nil {
		r.logger.Error("Falha ao verificar unicidade de produto.", err)
		return false, apperror.NewStorageError("verificar produto", err)
	}
	return exists, nil
}

// Count conta os produtos que atendem ao filtro.
func (r *ProductRepository) Count(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	w := productWhere(filter)
	var count int64
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM products`+w.String(), w.Args()...).Scan(&count); err != nil {
		r.logger.Error("Falha ao contar produtos.", err)
		return 0, apperror.NewStorageError("contar produtos", err)
	}
	return count, nil
}

// Save insere o produto quando ID está vazio; caso contrário substitui a linha existente.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()
	var row *sql.Row
	if product.ID == "" {
		product.ID = uuid.NewString()
		r.logger.Debug("Inserindo produto.", map[string]interface{}{"product_id": product.ID, "name": product.Name})
		row = r.DB.QueryRowContext(ctxTimeout, `
            INSERT INTO products (id, name, description, price, quantity, category, sku, is_active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
            RETURNING `+productColumns,
			product.ID, product.Name, product.Description, product.Price, product.Quantity,
			product.Category, nullableSKU(product.SKU), product.IsActive, now)
	} else {
		r.logger.Debug("Atualizando produto.", map[string]interface{}{"product_id": product.ID})
		row = r.DB.QueryRowContext(ctxTimeout, `
            UPDATE products
            SET name = $2, description = $3, price = $4, quantity = $5, category = $6, sku = $7, is_active = $8, updated_at = $9
            WHERE id = $1
            RETURNING `+productColumns,
			product.ID, product.Name, product.Description, product.Price, product.Quantity,
			product.Category, nullableSKU(product.SKU), product.IsActive, now)
	}

	saved, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NewNotFoundError(domain.EntityProduct, domain.FieldID, product.ID)
	}
	if constraint, ok := database.UniqueViolation(err); ok {
		switch constraint {
		case database.ConstraintProductName:
			return domain.Product{}, apperror.NewDuplicateResourceError(domain.EntityProduct, domain.FieldName, product.Name)
		case database.ConstraintProductSKU:
			return domain.Product{}, apperror.NewDuplicateResourceError(domain.EntityProduct, domain.FieldSKU, product.SKU)
		}
	}
	if err != nil {
		r.logger.Error("Falha ao salvar produto no DB.", err)
		return domain.Product{}, apperror.NewStorageError("salvar produto", err)
	}
	return saved, nil
}

// Delete remove o produto definitivamente.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover produto.", err)
		return apperror.NewStorageError("remover produto", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewStorageError("remover produto", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(domain.EntityProduct, domain.FieldID, id)
	}
	return nil
}
