package unitofwork

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/database"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/repository/addressrepo"
	"gorecords/internal/repository/productrepo"
	"gorecords/internal/repository/userrepo"
)

// PostgresUnitOfWork implementa domain.UnitOfWork com uma transação do PostgreSQL
// por chamada de Do.
type PostgresUnitOfWork struct {
	db        *sql.DB
	dbTimeout time.Duration
	logger    logger.Logger
}

// New cria a unidade de trabalho sobre o pool de conexões.
func New(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db, dbTimeout: dbTimeout, logger: logger}
}

// Repositories retorna repositórios ligados ao pool, fora de transação (leituras).
func (u *PostgresUnitOfWork) Repositories() domain.Repositories {
	return bind(u.db, u.dbTimeout, u.logger)
}

// Do executa fn com repositórios ligados a uma única transação.
func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	err := database.RunInTransaction(ctx, u.db, u.logger, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, bind(tx, u.dbTimeout, u.logger))
	})
	if err == nil {
		return nil
	}

	// Erros de begin/commit/rollback não são tipados: viram falha de armazenamento.
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewStorageError("unidade de trabalho", err)
}

func bind(db database.DBTX, timeout time.Duration, log logger.Logger) domain.Repositories {
	return domain.Repositories{
		Users:     userrepo.NewUserRepository(db, timeout, log),
		Products:  productrepo.NewProductRepository(db, timeout, log),
		Addresses: addressrepo.NewAddressRepository(db, timeout, log),
	}
}
