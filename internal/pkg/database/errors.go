package database

import (
	"errors"

	"github.com/lib/pq"
)

// Códigos SQLSTATE do PostgreSQL tratados pelos repositórios.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// Nomes das constraints criadas pelas migrations.
const (
	ConstraintUserEmail      = "users_email_key"
	ConstraintProductName    = "products_name_key"
	ConstraintProductSKU     = "products_sku_key"
	ConstraintDefaultAddress = "addresses_one_default_per_user"
	ConstraintAddressUser    = "addresses_user_id_fkey"
)

// UniqueViolation informa se err é uma violação de unicidade e qual constraint a causou.
func UniqueViolation(err error) (string, bool) {
	return violation(err, uniqueViolationCode)
}

// ForeignKeyViolation informa se err é uma violação de chave estrangeira.
func ForeignKeyViolation(err error) (string, bool) {
	return violation(err, foreignKeyViolationCode)
}

func violation(err error, code string) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == code {
		return pqErr.Constraint, true
	}
	return "", false
}
