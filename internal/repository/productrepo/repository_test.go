package productrepo_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/repository/productrepo"
)

var productCols = []string{"id", "name", "description", "price", "quantity", "category", "sku", "is_active", "created_at", "updated_at"}

func newRepo(t *testing.T) (*productrepo.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return productrepo.NewProductRepository(db, time.Second, logger.NewNop()), mock
}

func TestFindAll_InStockActive(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	yes := true

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE is_active = $1 AND quantity > $2 ORDER BY created_at, id`)).
		WithArgs(true, 0).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-1", "Teclado", "", 99.9, 4, "Periféricos", nil, true, now, now))

	products, err := repo.FindAll(context.Background(), domain.ProductFilter{Active: &yes, InStock: &yes})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "", products[0].SKU, "SKU NULL vira string vazia")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAll_PriceRangeAndCategory(t *testing.T) {
	repo, mock := newRepo(t)
	minPrice, maxPrice := 10.0, 50.0

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE lower(category) = lower($1) AND price >= $2 AND price <= $3`)).
		WithArgs("livros", minPrice, maxPrice).
		WillReturnRows(sqlmock.NewRows(productCols))

	products, err := repo.FindAll(context.Background(), domain.ProductFilter{Category: "livros", MinPrice: &minPrice, MaxPrice: &maxPrice})

	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_Active(t *testing.T) {
	repo, mock := newRepo(t)
	yes := true

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE is_active = $1`)).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), domain.ProductFilter{Active: &yes})

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestSave_DuplicateSKU(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "products_sku_key"})

	_, err := repo.Save(context.Background(), domain.Product{Name: "Teclado", Price: 10, SKU: "KB-1"})

	var dup *apperror.DuplicateResourceError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, domain.FieldSKU, dup.Field)
	assert.Equal(t, "KB-1", dup.Value)
}

func TestSave_EmptySKUStoredAsNull(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE products`).
		WithArgs("p-1", "Teclado", "", 10.0, 1, "", nil, true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-1", "Teclado", "", 10.0, 1, "", nil, true, now, now))

	_, err := repo.Save(context.Background(), domain.Product{ID: "p-1", Name: "Teclado", Price: 10, Quantity: 1, IsActive: true})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "p-1")

	assert.True(t, apperror.IsNotFound(err))
}
