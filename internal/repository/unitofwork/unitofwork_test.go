package unitofwork_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/repository/unitofwork"
	"gorecords/internal/service/integrity"
)

var addressCols = []string{"id", "user_id", "name", "street", "city", "state", "zip_code", "country", "address_type", "is_default", "created_at", "updated_at"}

func addressRows(now time.Time, rows ...[2]interface{}) *sqlmock.Rows {
	r := sqlmock.NewRows(addressCols)
	for _, row := range rows {
		r.AddRow(row[0], "u-1", "Ana", "Rua A", "Salvador", "BA", "40000000", "Brasil", "Casa", row[1], now, now)
	}
	return r
}

func newUnitOfWork(t *testing.T) (*unitofwork.PostgresUnitOfWork, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return unitofwork.New(db, time.Second, logger.NewNop()), mock
}

func TestDo_CommitsOnSuccess(t *testing.T) {
	uow, mock := newUnitOfWork(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM addresses WHERE user_id = $1`)).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Addresses.DeleteByUser(ctx, "u-1"); err != nil {
			return err
		}
		return repos.Users.Delete(ctx, "u-1")
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDo_RollsBackAndKeepsTypedError(t *testing.T) {
	uow, mock := newUnitOfWork(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		return repos.Users.Delete(ctx, "u-1")
	})

	assert.True(t, apperror.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDo_BeginFailureBecomesStorageError(t *testing.T) {
	uow, mock := newUnitOfWork(t)

	mock.ExpectBegin().WillReturnError(errors.New("pool esgotado"))

	called := false
	err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.IsType(t, &apperror.StorageError{}, err)
}

func TestDo_CommitFailureBecomesStorageError(t *testing.T) {
	uow, mock := newUnitOfWork(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("conexão perdida"))

	err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		return nil
	})

	assert.IsType(t, &apperror.StorageError{}, err)
}

func TestRepositories_OutsideTransaction(t *testing.T) {
	uow, mock := newUnitOfWork(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := uow.Repositories().Users.Count(context.Background(), domain.UserFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

// A linha do usuário é bloqueada antes de qualquer leitura com bloqueio ou
// escrita nos endereços, o que serializa as trocas de padrão do mesmo usuário.
func TestDo_SetDefaultLocksUserBeforeAddresses(t *testing.T) {
	uow, mock := newUnitOfWork(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.id = $1 AND a.user_id = $2 ORDER BY a.created_at, a.id FOR UPDATE OF a`)).
		WithArgs("a-2", "u-1").
		WillReturnRows(addressRows(now, [2]interface{}{"a-2", false}))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.user_id = $1 ORDER BY a.created_at, a.id FOR UPDATE OF a`)).
		WithArgs("u-1").
		WillReturnRows(addressRows(now, [2]interface{}{"a-1", true}, [2]interface{}{"a-2", false}))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE addresses`)).
		WithArgs("a-1", "Rua A", "Salvador", "BA", "40000000", "Brasil", "Casa", false, sqlmock.AnyArg()).
		WillReturnRows(addressRows(now, [2]interface{}{"a-1", false}))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE addresses`)).
		WithArgs("a-2", "Rua A", "Salvador", "BA", "40000000", "Brasil", "Casa", true, sqlmock.AnyArg()).
		WillReturnRows(addressRows(now, [2]interface{}{"a-2", true}))
	mock.ExpectCommit()

	var updated domain.Address
	err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		var err error
		updated, err = integrity.NewDefaultAddressManager(repos, logger.NewNop()).SetDefault(ctx, "a-2", "u-1")
		return err
	})

	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDo_PromotionByUpdateLocksUserFirst(t *testing.T) {
	uow, mock := newUnitOfWork(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM addresses a JOIN users u ON u.id = a.user_id WHERE a.id = $1`)).
		WithArgs("a-2").
		WillReturnRows(addressRows(now, [2]interface{}{"a-2", false}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.id = $1 ORDER BY a.created_at, a.id FOR UPDATE OF a`)).
		WithArgs("a-2").
		WillReturnRows(addressRows(now, [2]interface{}{"a-2", false}))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.user_id = $1 ORDER BY a.created_at, a.id FOR UPDATE OF a`)).
		WithArgs("u-1").
		WillReturnRows(addressRows(now, [2]interface{}{"a-1", true}, [2]interface{}{"a-2", false}))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE addresses`)).
		WithArgs("a-1", "Rua A", "Salvador", "BA", "40000000", "Brasil", "Casa", false, sqlmock.AnyArg()).
		WillReturnRows(addressRows(now, [2]interface{}{"a-1", false}))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		manager := integrity.NewDefaultAddressManager(repos, logger.NewNop())
		before, err := manager.Lock(ctx, "a-2")
		if err != nil {
			return err
		}
		after := before
		after.IsDefault = true
		return manager.BeforeUpdate(ctx, before, after)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
