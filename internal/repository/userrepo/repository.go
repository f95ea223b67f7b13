package userrepo

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

const userColumns = `id, name, email, phone, role, created_at, updated_at`

// Colunas aceitas por ExistsByField.
var uniqueColumns = map[string]string{
	domain.FieldEmail: "email",
}

// UserRepository implementa domain.UserRepository sobre PostgreSQL.
type UserRepository struct {
	DB        database.DBTX
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria o repositório; db pode ser o pool (*sql.DB) ou uma transação (*sql.Tx).
func NewUserRepository(db database.DBTX, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, id)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewStorageError("buscar usuário", err)
	}
	return user, nil
}

// Lock executa SELECT ... FOR UPDATE na linha do usuário. Fora de transação o
// bloqueio termina junto com o comando.
func (r *UserRepository) Lock(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var locked string
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, id)
	}
	if err != nil {
		r.logger.Error("Falha ao bloquear usuário no DB.", err)
		return apperror.NewStorageError("bloquear usuário", err)
	}
	return nil
}

func userWhere(filter domain.UserFilter) *database.Where {
	w := &database.Where{}
	if filter.Email != "" {
		w.Add("email = %s", filter.Email)
	}
	if filter.Role != "" {
		w.Add("role = %s", string(filter.Role))
	}
	if filter.NameContains != "" {
		w.Add("name ILIKE %s", database.ContainsPattern(filter.NameContains))
	}
	return w
}

// FindAll lista os usuários que atendem ao filtro, em ordem de criação.
func (r *UserRepository) FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	w := userWhere(filter)
	query := `SELECT ` + userColumns + ` FROM users` + w.String() + ` ORDER BY created_at, id`

	rows, err := r.DB.QueryContext(ctxTimeout, query, w.Args()...)
	if err != nil {
		r.logger.Error("Falha ao listar usuários no DB.", err)
		return nil, apperror.NewStorageError("listar usuários", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewStorageError("ler usuário", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStorageError("listar usuários", err)
	}
	return users, nil
}

// ExistsByField verifica se algum usuário já usa o valor no campo único informado.
func (r *UserRepository) ExistsByField(ctx context.Context, field, value string) (bool, error) {
	column, ok := uniqueColumns[field]
	if !ok {
		return false, fmt.Errorf("userrepo: campo sem checagem de unicidade: %s", field)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE ` + column + ` = $1)`
	if err := r.DB.QueryRowContext(ctxTimeout, query, value).Scan(&exists); err != nil {
		r.logger.Error("Falha ao verificar unicidade de usuário.", err)
		return false, apperror.NewStorageError("verificar usuário", err)
	}
	return exists, nil
}

// Count conta os usuários que atendem ao filtro.
func (r *UserRepository) Count(ctx context.Context, filter domain.UserFilter) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	w := userWhere(filter)
	var count int64
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM users`+w.String(), w.Args()...).Scan(&count); err != nil {
		r.logger.Error("Falha ao contar usuários.", err)
		return 0, apperror.NewStorageError("contar usuários", err)
	}
	return count, nil
}

// Save insere o usuário quando ID está vazio; caso contrário substitui a linha existente.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	now := time.Now().UTC()
	var row *sql.Row
	if user.ID == "" {
		user.ID = uuid.NewString()
		r.logger.Debug("Inserindo usuário.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
		row = r.DB.QueryRowContext(ctxTimeout, `
            INSERT INTO users (id, name, email, phone, role, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $6)
            RETURNING `+userColumns,
			user.ID, user.Name, user.Email, user.Phone, string(user.Role), now)
	} else {
		r.logger.Debug("Atualizando usuário.", map[string]interface{}{"user_id": user.ID})
		row = r.DB.QueryRowContext(ctxTimeout, `
            UPDATE users SET name = $2, email = $3, phone = $4, role = $5, updated_at = $6
            WHERE id = $1
            RETURNING `+userColumns,
			user.ID, user.Name, user.Email, user.Phone, string(user.Role), now)
	}

	saved, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, user.ID)
	}
	if constraint, ok := database.UniqueViolation(err); ok && constraint == database.ConstraintUserEmail {
		r.logger.Warn("Email duplicado barrado pelo índice único.", map[string]interface{}{"email": user.Email})
		return domain.User{}, apperror.NewDuplicateResourceError(domain.EntityUser, domain.FieldEmail, user.Email)
	}
	if err != nil {
		r.logger.Error("Falha ao salvar usuário no DB.", err)
		return domain.User{}, apperror.NewStorageError("salvar usuário", err)
	}
	return saved, nil
}

// Delete remove o usuário. Os endereços dele caem pela FK ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover usuário.", err)
		return apperror.NewStorageError("remover usuário", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewStorageError("remover usuário", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, id)
	}
	return nil
}
