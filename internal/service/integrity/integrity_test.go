package integrity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/repository/memrepo"
	"gorecords/internal/service/integrity"
)

// countingAddresses conta as gravações feitas no repositório de endereços.
type countingAddresses struct {
	domain.AddressRepository
	saves int
}

func (c *countingAddresses) Save(ctx context.Context, a domain.Address) (domain.Address, error) {
	c.saves++
	return c.AddressRepository.Save(ctx, a)
}

type fixture struct {
	ctx       context.Context
	repos     domain.Repositories
	addresses *countingAddresses
	user      domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memrepo.NewStore(logger.NewNop()).Repositories()
	counting := &countingAddresses{AddressRepository: repos.Addresses}
	repos.Addresses = counting

	ctx := context.Background()
	user, err := repos.Users.Save(ctx, domain.User{Name: "Ana", Email: "ana@x.com", Role: domain.RoleCustomer})
	require.NoError(t, err)

	return &fixture{ctx: ctx, repos: repos, addresses: counting, user: user}
}

func (f *fixture) address(t *testing.T, street string, isDefault bool) domain.Address {
	t.Helper()
	a, err := f.repos.Addresses.Save(f.ctx, domain.Address{UserID: f.user.ID, Street: street, City: "Salvador", IsDefault: isDefault})
	require.NoError(t, err)
	return a
}

func (f *fixture) defaults(t *testing.T) []domain.Address {
	t.Helper()
	yes := true
	list, err := f.repos.Addresses.FindAll(f.ctx, domain.AddressFilter{UserID: f.user.ID, IsDefault: &yes})
	require.NoError(t, err)
	return list
}

func TestResolver_NotFoundCarriesLookupKey(t *testing.T) {
	f := newFixture(t)
	r := integrity.NewResolver(f.repos)

	_, err := r.UserByEmail(f.ctx, "ninguem@x.com")
	var nf *apperror.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.FieldEmail, nf.Field)

	_, err = r.ProductBySKU(f.ctx, "NAO-EXISTE")
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.FieldSKU, nf.Field)

	_, err = r.DefaultAddress(f.ctx, f.user.ID)
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.EntityDefaultAddress, nf.Entity)
	assert.Equal(t, domain.FieldUserID, nf.Field)
}

func TestResolver_UserAddressRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	other, _ := f.repos.Users.Save(f.ctx, domain.User{Name: "Bia", Email: "bia@x.com"})
	home := f.address(t, "Rua A", false)

	found, err := integrity.NewResolver(f.repos).UserAddress(f.ctx, f.user.ID, home.ID)
	require.NoError(t, err)
	assert.Equal(t, home.ID, found.ID)

	_, err = integrity.NewResolver(f.repos).UserAddress(f.ctx, other.ID, home.ID)
	var nf *apperror.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.EntityAddress, nf.Entity)
	assert.Equal(t, home.ID, nf.Value)
}

func TestUniquenessGuard_Create(t *testing.T) {
	f := newFixture(t)
	_, _ = f.repos.Products.Save(f.ctx, domain.Product{Name: "Teclado", SKU: "KB-1", Price: 10})
	guard := integrity.NewUniquenessGuard(f.repos)

	err := guard.User(f.ctx, domain.User{Email: "ana@x.com"}, nil)
	assert.True(t, apperror.IsDuplicate(err))

	err = guard.Product(f.ctx, domain.Product{Name: "Mouse", SKU: "KB-1"}, nil)
	var dup *apperror.DuplicateResourceError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, domain.FieldSKU, dup.Field)

	assert.NoError(t, guard.Product(f.ctx, domain.Product{Name: "Mouse"}, nil), "SKU vazio não é checado")
}

func TestUniquenessGuard_UpdateExemptsOwnValue(t *testing.T) {
	f := newFixture(t)
	kb, _ := f.repos.Products.Save(f.ctx, domain.Product{Name: "Teclado", SKU: "KB-1", Price: 10})
	_, _ = f.repos.Products.Save(f.ctx, domain.Product{Name: "Mouse", SKU: "MS-1", Price: 5})
	guard := integrity.NewUniquenessGuard(f.repos)

	assert.NoError(t, guard.User(f.ctx, f.user, &f.user))
	assert.NoError(t, guard.Product(f.ctx, kb, &kb))

	renamed := kb
	renamed.Name = "Mouse"
	assert.True(t, apperror.IsDuplicate(guard.Product(f.ctx, renamed, &kb)))
}

func TestDefaultAddressManager_BeforeCreateUnsetsPrevious(t *testing.T) {
	f := newFixture(t)
	home := f.address(t, "Rua A", true)
	m := integrity.NewDefaultAddressManager(f.repos, logger.NewNop())

	require.NoError(t, m.BeforeCreate(f.ctx, domain.Address{UserID: f.user.ID, IsDefault: true}))

	reloaded, _ := f.repos.Addresses.FindByID(f.ctx, home.ID)
	assert.False(t, reloaded.IsDefault)
}

func TestDefaultAddressManager_BeforeCreateNonDefaultTouchesNothing(t *testing.T) {
	f := newFixture(t)
	f.address(t, "Rua A", true)
	f.addresses.saves = 0

	m := integrity.NewDefaultAddressManager(f.repos, logger.NewNop())
	require.NoError(t, m.BeforeCreate(f.ctx, domain.Address{UserID: f.user.ID}))

	assert.Zero(t, f.addresses.saves)
	assert.Len(t, f.defaults(t), 1)
}

func TestDefaultAddressManager_BeforeUpdateOnlyOnPromotion(t *testing.T) {
	f := newFixture(t)
	home := f.address(t, "Rua A", true)
	work := f.address(t, "Rua B", false)
	m := integrity.NewDefaultAddressManager(f.repos, logger.NewNop())
	f.addresses.saves = 0

	// true -> true e true -> false não mexem em outros endereços.
	require.NoError(t, m.BeforeUpdate(f.ctx, home, home))
	demoted := home
	demoted.IsDefault = false
	require.NoError(t, m.BeforeUpdate(f.ctx, home, demoted))
	assert.Zero(t, f.addresses.saves)

	promoted := work
	promoted.IsDefault = true
	require.NoError(t, m.BeforeUpdate(f.ctx, work, promoted))

	reloaded, _ := f.repos.Addresses.FindByID(f.ctx, home.ID)
	assert.False(t, reloaded.IsDefault)
	assert.Equal(t, 1, f.addresses.saves)
}

func TestDefaultAddressManager_SetDefault(t *testing.T) {
	f := newFixture(t)
	home := f.address(t, "Rua A", true)
	work := f.address(t, "Rua B", false)
	m := integrity.NewDefaultAddressManager(f.repos, logger.NewNop())

	updated, err := m.SetDefault(f.ctx, work.ID, f.user.ID)

	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	defaults := f.defaults(t)
	require.Len(t, defaults, 1)
	assert.Equal(t, work.ID, defaults[0].ID)

	reloaded, _ := f.repos.Addresses.FindByID(f.ctx, home.ID)
	assert.False(t, reloaded.IsDefault)
}

func TestDefaultAddressManager_SetDefaultIsIdempotent(t *testing.T) {
	f := newFixture(t)
	home := f.address(t, "Rua A", true)
	m := integrity.NewDefaultAddressManager(f.repos, logger.NewNop())
	f.addresses.saves = 0

	first, err := m.SetDefault(f.ctx, home.ID, f.user.ID)
	require.NoError(t, err)
	second, err := m.SetDefault(f.ctx, home.ID, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, f.addresses.saves)
	assert.Len(t, f.defaults(t), 1)
}

func TestDefaultAddressManager_SetDefaultForeignAddress(t *testing.T) {
	f := newFixture(t)
	other, _ := f.repos.Users.Save(f.ctx, domain.User{Name: "Bia", Email: "bia@x.com"})
	home := f.address(t, "Rua A", true)
	m := integrity.NewDefaultAddressManager(f.repos, logger.NewNop())
	f.addresses.saves = 0

	_, err := m.SetDefault(f.ctx, home.ID, other.ID)

	assert.True(t, apperror.IsNotFound(err))
	assert.Zero(t, f.addresses.saves)
}

func TestDefaultAddressManager_SetDefaultUnknownUser(t *testing.T) {
	f := newFixture(t)
	home := f.address(t, "Rua A", false)
	m := integrity.NewDefaultAddressManager(f.repos, logger.NewNop())
	f.addresses.saves = 0

	_, err := m.SetDefault(f.ctx, home.ID, "nao-existe")

	var nf *apperror.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.EntityAddress, nf.Entity)
	assert.Equal(t, home.ID, nf.Value)
	assert.Zero(t, f.addresses.saves)
}

func TestDefaultAddressManager_LockReturnsCurrentRow(t *testing.T) {
	f := newFixture(t)
	home := f.address(t, "Rua A", true)
	m := integrity.NewDefaultAddressManager(f.repos, logger.NewNop())

	locked, err := m.Lock(f.ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, home.ID, locked.ID)
	assert.True(t, locked.IsDefault)

	_, err = m.Lock(f.ctx, "nao-existe")
	assert.True(t, apperror.IsNotFound(err))
}
