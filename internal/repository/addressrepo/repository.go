package addressrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/database"
	"gorecords/internal/pkg/logger"
)

// Colunas do endereço com o nome do dono (alias a = addresses, u = users).
const addressColumns = `a.id, a.user_id, u.name, a.street, a.city, a.state, a.zip_code, a.country, a.address_type, a.is_default, a.created_at, a.updated_at`

// AddressRepository implementa domain.AddressRepository sobre PostgreSQL.
type AddressRepository struct {
	DB        database.DBTX
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAddressRepository cria o repositório; db pode ser o pool ou uma transação.
func NewAddressRepository(db database.DBTX, dbTimeout time.Duration, logger logger.Logger) *AddressRepository {
	return &AddressRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAddress(s scanner) (domain.Address, error) {
	var a domain.Address
	err := s.Scan(&a.ID, &a.UserID, &a.UserName, &a.Street, &a.City, &a.State, &a.ZipCode,
		&a.Country, &a.AddressType, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// FindByID busca um endereço pelo ID.
func (r *AddressRepository) FindByID(ctx context.Context, id string) (domain.Address, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + addressColumns + ` FROM addresses a JOIN users u ON u.id = a.user_id WHERE a.id = $1`
	address, err := scanAddress(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Address{}, apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, id)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar endereço por ID no DB.", err)
		return domain.Address{}, apperror.NewStorageError("buscar endereço", err)
	}
	return address, nil
}

func addressWhere(filter domain.AddressFilter) *database.Where {
	w := &database.Where{}
	if filter.ID != "" {
		w.Add("a.id = %s", filter.ID)
	}
	if filter.UserID != "" {
		w.Add("a.user_id = %s", filter.UserID)
	}
	if filter.AddressType != "" {
		w.Add("lower(a.address_type) = lower(%s)", filter.AddressType)
	}
	if filter.IsDefault != nil {
		w.Add("a.is_default = %s", *filter.IsDefault)
	}
	if filter.City != "" {
		w.Add("lower(a.city) = lower(%s)", filter.City)
	}
	if filter.State != "" {
		w.Add("lower(a.state) = lower(%s)", filter.State)
	}
	if filter.Country != "" {
		w.Add("lower(a.country) = lower(%s)", filter.Country)
	}
	return w
}

// FindAll lista os endereços que atendem ao filtro. Com ForUpdate as linhas
// ficam bloqueadas até o fim da transação corrente.
func (r *AddressRepository) FindAll(ctx context.Context, filter domain.AddressFilter) ([]domain.Address, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	w := addressWhere(filter)
	query := `SELECT ` + addressColumns + ` FROM addresses a JOIN users u ON u.id = a.user_id` +
		w.String() + ` ORDER BY a.created_at, a.id`
	if filter.ForUpdate {
		query += ` FOR UPDATE OF a`
	}

	rows, err := r.DB.QueryContext(ctxTimeout, query, w.Args()...)
	if err != nil {
		r.logger.Error("Falha ao listar endereços no DB.", err)
		return nil, apperror.NewStorageError("listar endereços", err)
	}
	defer rows.Close()

	addresses := []domain.Address{}
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, apperror.NewStorageError("ler endereço", err)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStorageError("listar endereços", err)
	}
	return addresses, nil
}

// Count conta os endereços que atendem ao filtro.
func (r *AddressRepository) Count(ctx context.Context, filter domain.AddressFilter) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	w := addressWhere(filter)
	var count int64
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM addresses a`+w.String(), w.Args()...).Scan(&count); err != nil {
		r.logger.Error("Falha ao contar endereços.", err)
		return 0, apperror.NewStorageError("contar endereços", err)
	}
	return count, nil
}

// Save insere o endereço quando ID está vazio; caso contrário substitui a linha.
// user_id nunca é alterado no UPDATE.
func (r *AddressRepository) Save(ctx context.Context, address domain.Address) (domain.Address, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()
	var row *sql.Row
	if address.ID == "" {
		address.ID = uuid.NewString()
		r.logger.Debug("Inserindo endereço.", map[string]interface{}{"address_id": address.ID, "user_id": address.UserID})
		row = r.DB.QueryRowContext(ctxTimeout, `
            WITH a AS (
                INSERT INTO addresses (id, user_id, street, city, state, zip_code, country, address_type, is_default, created_at, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
                RETURNING *
            )
            SELECT `+addressColumns+` FROM a JOIN users u ON u.id = a.user_id`,
			address.ID, address.UserID, address.Street, address.City, address.State, address.ZipCode,
			address.Country, address.AddressType, address.IsDefault, now)
	} else {
		r.logger.Debug("Atualizando endereço.", map[string]interface{}{"address_id": address.ID, "is_default": address.IsDefault})
		row = r.DB.QueryRowContext(ctxTimeout, `
            WITH a AS (
                UPDATE addresses
                SET street = $2, city = $3, state = $4, zip_code = $5, country = $6, address_type = $7, is_default = $8, updated_at = $9
                WHERE id = $1
                RETURNING *
            )
            SELECT `+addressColumns+` FROM a JOIN users u ON u.id = a.user_id`,
			address.ID, address.Street, address.City, address.State, address.ZipCode,
			address.Country, address.AddressType, address.IsDefault, now)
	}

	saved, err := scanAddress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Address{}, apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, address.ID)
	}
	if constraint, ok := database.UniqueViolation(err); ok && constraint == database.ConstraintDefaultAddress {
		r.logger.Warn("Segundo endereço padrão barrado pelo índice único.", map[string]interface{}{"user_id": address.UserID})
		return domain.Address{}, apperror.NewDuplicateResourceError(domain.EntityDefaultAddress, domain.FieldUserID, address.UserID)
	}
	if constraint, ok := database.ForeignKeyViolation(err); ok && constraint == database.ConstraintAddressUser {
		return domain.Address{}, apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, address.UserID)
	}
	if err != nil {
		r.logger.Error("Falha ao salvar endereço no DB.", err)
		return domain.Address{}, apperror.NewStorageError("salvar endereço", err)
	}
	return saved, nil
}

// Delete remove um endereço.
func (r *AddressRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover endereço.", err)
		return apperror.NewStorageError("remover endereço", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewStorageError("remover endereço", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, id)
	}
	return nil
}

// DeleteByUser remove todos os endereços do usuário e retorna quantos foram removidos.
func (r *AddressRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM addresses WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error("Falha ao remover endereços do usuário.", err)
		return 0, apperror.NewStorageError("remover endereços do usuário", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.NewStorageError("remover endereços do usuário", err)
	}
	return affected, nil
}
