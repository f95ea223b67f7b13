package database

import (
	"context"
	"database/sql"
	"fmt"

	"gorecords/internal/pkg/logger"
)

// DBTX é o subconjunto comum entre *sql.DB e *sql.Tx usado pelos repositórios.
// O mesmo repositório funciona fora ou dentro de uma transação.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxFn é executada dentro de uma transação.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction abre uma transação, executa fn e faz commit se fn retornar nil.
// Em erro ou panic a transação é desfeita; o panic é repassado.
func RunInTransaction(ctx context.Context, db *sql.DB, log logger.Logger, fn TxFn) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("Falha ao iniciar transação.", err)
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Falha no rollback após panic.", rbErr)
			}
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Falha no rollback da transação.", rbErr)
			return fmt.Errorf("falha no rollback: %v (erro original: %w)", rbErr, err)
		}
		log.Debug("Transação desfeita.", map[string]interface{}{"error": err.Error()})
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error("Falha ao commitar transação.", err)
		return fmt.Errorf("falha ao commitar transação: %w", err)
	}

	return nil
}
