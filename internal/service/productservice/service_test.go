package productservice_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/repository/memrepo"
	"gorecords/internal/service/productservice"
)

// MockProductRepository é uma implementação mock da interface domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByField(ctx context.Context, field, value string) (bool, error) {
	args := m.Called(ctx, field, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type fakeUnitOfWork struct {
	repos domain.Repositories
}

func (f fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return fn(ctx, f.repos)
}

func newService() (*productservice.Service, *MockProductRepository) {
	products := new(MockProductRepository)
	repos := domain.Repositories{Products: products}
	return productservice.NewService(fakeUnitOfWork{repos: repos}, repos, logger.NewNop()), products
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

// --- Testes para Create ---

func TestCreate_Success_ActiveByDefault(t *testing.T) {
	svc, products := newService()
	req := domain.ProductRequest{Name: "Teclado", Price: 199.9, Quantity: intPtr(10), Category: "Periféricos", SKU: "KB-001"}

	expected := domain.Product{Name: "Teclado", Price: 199.9, Quantity: 10, Category: "Periféricos", SKU: "KB-001", IsActive: true}
	products.On("ExistsByField", mock.Anything, domain.FieldName, "Teclado").Return(false, nil)
	products.On("ExistsByField", mock.Anything, domain.FieldSKU, "KB-001").Return(false, nil)
	products.On("Save", mock.Anything, expected).Return(expected, nil)

	result, err := svc.Create(context.Background(), req)

	assert.NoError(t, err)
	assert.True(t, result.IsActive)
	products.AssertExpectations(t)
}

func TestCreate_Success_WithoutSKUSkipsSKUCheck(t *testing.T) {
	svc, products := newService()
	req := domain.ProductRequest{Name: "Mouse", Price: 50, Quantity: intPtr(1), IsActive: boolPtr(false)}

	products.On("ExistsByField", mock.Anything, domain.FieldName, "Mouse").Return(false, nil)
	products.On("Save", mock.Anything, mock.AnythingOfType("domain.Product")).Return(domain.Product{Name: "Mouse"}, nil)

	_, err := svc.Create(context.Background(), req)

	assert.NoError(t, err)
	products.AssertNotCalled(t, "ExistsByField", mock.Anything, domain.FieldSKU, mock.Anything)
	saved := products.Calls[len(products.Calls)-1].Arguments.Get(1).(domain.Product)
	assert.False(t, saved.IsActive)
}

func TestCreate_Fail_DuplicateName(t *testing.T) {
	svc, products := newService()

	products.On("ExistsByField", mock.Anything, domain.FieldName, "Teclado").Return(true, nil)

	_, err := svc.Create(context.Background(), domain.ProductRequest{Name: "Teclado", Price: 10, Quantity: intPtr(1)})

	var dup *apperror.DuplicateResourceError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, domain.FieldName, dup.Field)
	products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreate_Fail_Validation(t *testing.T) {
	svc, products := newService()

	_, err := svc.Create(context.Background(), domain.ProductRequest{Name: "Teclado", Price: 10.555, Quantity: intPtr(1), SKU: "kb 1"})

	var vErr *apperror.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "price")
	assert.Contains(t, vErr.Fields, "sku")
	products.AssertNotCalled(t, "ExistsByField", mock.Anything, mock.Anything, mock.Anything)
}

// --- Testes para Update ---

func TestUpdate_FullReplaceKeepsIsActiveWhenAbsent(t *testing.T) {
	svc, products := newService()
	id := uuid.NewString()
	existing := domain.Product{ID: id, Name: "Teclado", Description: "ABNT2", Price: 10, Quantity: 5, Category: "Periféricos", SKU: "KB-1", IsActive: false}

	expected := domain.Product{ID: id, Name: "Teclado", Price: 12, Quantity: 3, IsActive: false}
	products.On("FindByID", mock.Anything, id).Return(existing, nil)
	products.On("Save", mock.Anything, expected).Return(expected, nil)

	result, err := svc.Update(context.Background(), id, domain.ProductRequest{Name: "Teclado", Price: 12, Quantity: intPtr(3)})

	assert.NoError(t, err)
	assert.Empty(t, result.Description, "descrição é substituída")
	assert.Empty(t, result.SKU, "SKU é substituído")
	assert.False(t, result.IsActive)
	products.AssertNotCalled(t, "ExistsByField", mock.Anything, domain.FieldName, mock.Anything)
	products.AssertExpectations(t)
}

func TestUpdate_Fail_NotFound(t *testing.T) {
	svc, products := newService()
	id := uuid.NewString()

	products.On("FindByID", mock.Anything, id).Return(domain.Product{}, apperror.NewNotFoundError(domain.EntityProduct, domain.FieldID, id))

	_, err := svc.Update(context.Background(), id, domain.ProductRequest{Name: "Teclado", Price: 12, Quantity: intPtr(3)})

	assert.True(t, apperror.IsNotFound(err))
	products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdate_Fail_SKUTakenByAnother(t *testing.T) {
	svc, products := newService()
	id := uuid.NewString()
	existing := domain.Product{ID: id, Name: "Teclado", Price: 10, SKU: "KB-1"}

	products.On("FindByID", mock.Anything, id).Return(existing, nil)
	products.On("ExistsByField", mock.Anything, domain.FieldSKU, "MS-1").Return(true, nil)

	_, err := svc.Update(context.Background(), id, domain.ProductRequest{Name: "Teclado", Price: 10, Quantity: intPtr(0), SKU: "MS-1"})

	assert.True(t, apperror.IsDuplicate(err))
}

// --- Testes para alterações pontuais ---

func TestDeactivate(t *testing.T) {
	svc, products := newService()
	id := uuid.NewString()
	existing := domain.Product{ID: id, Name: "Teclado", IsActive: true}
	expected := existing
	expected.IsActive = false

	products.On("FindByID", mock.Anything, id).Return(existing, nil)
	products.On("Save", mock.Anything, expected).Return(expected, nil)

	result, err := svc.Deactivate(context.Background(), id)

	assert.NoError(t, err)
	assert.False(t, result.IsActive)
}

func TestSetQuantity_Fail_OutOfRange(t *testing.T) {
	svc, products := newService()

	_, err := svc.SetQuantity(context.Background(), uuid.NewString(), 1000000)

	assert.IsType(t, &apperror.ValidationError{}, err)
	products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestDelete_Fail_NotFound(t *testing.T) {
	svc, products := newService()
	id := uuid.NewString()

	products.On("FindByID", mock.Anything, id).Return(domain.Product{}, apperror.NewNotFoundError(domain.EntityProduct, domain.FieldID, id))

	err := svc.Delete(context.Background(), id)

	assert.True(t, apperror.IsNotFound(err))
	products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- Testes de consulta ---

func TestListInStock_UsesActiveAndQuantityFilter(t *testing.T) {
	svc, products := newService()
	filter := domain.ProductFilter{Active: boolPtr(true), InStock: boolPtr(true)}

	products.On("FindAll", mock.Anything, filter).Return([]domain.Product{{Name: "Teclado", Quantity: 2}}, nil)

	result, err := svc.ListInStock(context.Background())

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	products.AssertExpectations(t)
}

func TestListByPriceRange_Fail_Inverted(t *testing.T) {
	svc, products := newService()

	_, err := svc.ListByPriceRange(context.Background(), 50, 10)

	var vErr *apperror.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "maxPrice")
	products.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestListByPriceRange_Fail_NotFinite(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		field    string
	}{
		{"min NaN", math.NaN(), 10, "minPrice"},
		{"max NaN", 0, math.NaN(), "maxPrice"},
		{"max infinito", 0, math.Inf(1), "maxPrice"},
		{"min infinito negativo", math.Inf(-1), 10, "minPrice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, products := newService()

			_, err := svc.ListByPriceRange(context.Background(), tt.min, tt.max)

			var vErr *apperror.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, "deve ser um número finito", vErr.Fields[tt.field])
			products.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
		})
	}
}

func TestGetBySKU_NotFound(t *testing.T) {
	svc, products := newService()

	products.On("FindAll", mock.Anything, domain.ProductFilter{SKU: "XX-1"}).Return([]domain.Product{}, nil)

	_, err := svc.GetBySKU(context.Background(), "XX-1")

	var nf *apperror.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.FieldSKU, nf.Field)
	assert.Equal(t, "XX-1", nf.Value)
}

func TestGetByID_Fail_InvalidID(t *testing.T) {
	svc, products := newService()

	_, err := svc.GetByID(context.Background(), "abc")

	assert.IsType(t, &apperror.ValidationError{}, err)
	products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// --- Testes sobre o armazenamento em memória ---

func TestMemory_CatalogQueries(t *testing.T) {
	store := memrepo.NewStore(logger.NewNop())
	svc := productservice.NewService(store, store.Repositories(), logger.NewNop())
	ctx := context.Background()

	kb, err := svc.Create(ctx, domain.ProductRequest{Name: "Teclado", Price: 100, Quantity: intPtr(5), Category: "Periféricos", SKU: "KB-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.ProductRequest{Name: "Mouse", Price: 50, Quantity: intPtr(0), Category: "periféricos"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.ProductRequest{Name: "Monitor", Price: 900, Quantity: intPtr(2), Category: "Vídeo", IsActive: boolPtr(false)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.ProductRequest{Name: "Outro Teclado", Price: 100, Quantity: intPtr(1), SKU: "KB-1"})
	assert.True(t, apperror.IsDuplicate(err))

	inStock, _ := svc.ListInStock(ctx)
	outOfStock, _ := svc.ListOutOfStock(ctx)
	inRange, _ := svc.ListByPriceRange(ctx, 50, 100)
	byCategory, _ := svc.CountByCategory(ctx, "PERIFÉRICOS")
	active, _ := svc.CountActive(ctx)
	search, _ := svc.Search(ctx, "tecl")

	assert.Len(t, inStock, 1)
	assert.Len(t, outOfStock, 1)
	assert.Len(t, inRange, 2)
	assert.Equal(t, int64(2), byCategory)
	assert.Equal(t, int64(2), active)
	require.Len(t, search, 1)
	assert.Equal(t, kb.ID, search[0].ID)

	updated, err := svc.SetQuantity(ctx, kb.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)

	// Salvar sem mudar nome e SKU não colide consigo mesmo.
	_, err = svc.Update(ctx, kb.ID, domain.ProductRequest{Name: "Teclado", Price: 110, Quantity: intPtr(4), SKU: "KB-1"})
	assert.NoError(t, err)
}
