package memrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
)

// UserRepository implementa domain.UserRepository em memória.
type UserRepository struct {
	v view
}

func matchUser(u domain.User, f domain.UserFilter) bool {
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.NameContains != "" && !containsFold(u.Name, f.NameContains) {
		return false
	}
	return true
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	err := r.v.with(ctx, func(st *state) error {
		u, ok := st.users.get(id)
		if !ok {
			return apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, id)
		}
		user = u
		return nil
	})
	return user, err
}

// Lock só confirma a existência: Store.Do já serializa as unidades de trabalho.
func (r *UserRepository) Lock(ctx context.Context, id string) error {
	_, err := r.FindByID(ctx, id)
	return err
}

func (r *UserRepository) FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users := []domain.User{}
	err := r.v.with(ctx, func(st *state) error {
		st.users.each(func(u domain.User) bool {
			if matchUser(u, filter) {
				users = append(users, u)
			}
			return true
		})
		return nil
	})
	return users, err
}

func (r *UserRepository) ExistsByField(ctx context.Context, field, value string) (bool, error) {
	if field != domain.FieldEmail {
		return false, fmt.Errorf("memrepo: campo sem checagem de unicidade: %s", field)
	}
	var exists bool
	err := r.v.with(ctx, func(st *state) error {
		st.users.each(func(u domain.User) bool {
			exists = u.Email == value
			return !exists
		})
		return nil
	})
	return exists, err
}

func (r *UserRepository) Count(ctx context.Context, filter domain.UserFilter) (int64, error) {
	users, err := r.FindAll(ctx, filter)
	return int64(len(users)), err
}

func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	err := r.v.with(ctx, func(st *state) error {
		now := r.v.store.now()
		if user.ID == "" {
			user.ID = uuid.NewString()
			user.CreatedAt = now
		} else {
			current, ok := st.users.get(user.ID)
			if !ok {
				return apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, user.ID)
			}
			user.CreatedAt = current.CreatedAt
		}
		user.UpdatedAt = now

		// Índice único de email.
		var clash bool
		st.users.each(func(u domain.User) bool {
			clash = u.ID != user.ID && u.Email == user.Email
			return !clash
		})
		if clash {
			return apperror.NewDuplicateResourceError(domain.EntityUser, domain.FieldEmail, user.Email)
		}

		st.users.put(user.ID, user)
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Delete remove o usuário e, como a FK com cascade, os endereços dele.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.v.with(ctx, func(st *state) error {
		if !st.users.remove(id) {
			return apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, id)
		}
		var owned []string
		st.addresses.each(func(a domain.Address) bool {
			if a.UserID == id {
				owned = append(owned, a.ID)
			}
			return true
		})
		for _, addrID := range owned {
			st.addresses.remove(addrID)
		}
		return nil
	})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
