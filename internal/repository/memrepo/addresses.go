package memrepo

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
)

// AddressRepository implementa domain.AddressRepository em memória.
// ForUpdate não tem efeito: as unidades de trabalho já são serializadas.
type AddressRepository struct {
	v view
}

func matchAddress(a domain.Address, f domain.AddressFilter) bool {
	switch {
	case f.ID != "" && a.ID != f.ID:
		return false
	case f.UserID != "" && a.UserID != f.UserID:
		return false
	case f.AddressType != "" && !strings.EqualFold(a.AddressType, f.AddressType):
		return false
	case f.IsDefault != nil && a.IsDefault != *f.IsDefault:
		return false
	case f.City != "" && !strings.EqualFold(a.City, f.City):
		return false
	case f.State != "" && !strings.EqualFold(a.State, f.State):
		return false
	case f.Country != "" && !strings.EqualFold(a.Country, f.Country):
		return false
	}
	return true
}

// withOwner preenche UserName a partir do usuário dono, como o JOIN do PostgreSQL.
func withOwner(st *state, a domain.Address) domain.Address {
	if u, ok := st.users.get(a.UserID); ok {
		a.UserName = u.Name
	}
	return a
}

func (r *AddressRepository) FindByID(ctx context.Context, id string) (domain.Address, error) {
	var address domain.Address
	err := r.v.with(ctx, func(st *state) error {
		a, ok := st.addresses.get(id)
		if !ok {
			return apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, id)
		}
		address = withOwner(st, a)
		return nil
	})
	return address, err
}

func (r *AddressRepository) FindAll(ctx context.Context, filter domain.AddressFilter) ([]domain.Address, error) {
	addresses := []domain.Address{}
	err := r.v.with(ctx, func(st *state) error {
		st.addresses.each(func(a domain.Address) bool {
			if matchAddress(a, filter) {
				addresses = append(addresses, withOwner(st, a))
			}
			return true
		})
		return nil
	})
	return addresses, err
}

func (r *AddressRepository) Count(ctx context.Context, filter domain.AddressFilter) (int64, error) {
	addresses, err := r.FindAll(ctx, filter)
	return int64(len(addresses)), err
}

func (r *AddressRepository) Save(ctx context.Context, address domain.Address) (domain.Address, error) {
	err := r.v.with(ctx, func(st *state) error {
		now := r.v.store.now()
		if address.ID == "" {
			if _, ok := st.users.get(address.UserID); !ok {
				return apperror.NewNotFoundError(domain.EntityUser, domain.FieldID, address.UserID)
			}
			address.ID = uuid.NewString()
			address.CreatedAt = now
		} else {
			current, ok := st.addresses.get(address.ID)
			if !ok {
				return apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, address.ID)
			}
			address.UserID = current.UserID
			address.CreatedAt = current.CreatedAt
		}
		address.UpdatedAt = now

		// Índice único parcial: um endereço padrão por usuário.
		if address.IsDefault {
			var clash bool
			st.addresses.each(func(a domain.Address) bool {
				clash = a.ID != address.ID && a.UserID == address.UserID && a.IsDefault
				return !clash
			})
			if clash {
				return apperror.NewDuplicateResourceError(domain.EntityDefaultAddress, domain.FieldUserID, address.UserID)
			}
		}

		address.UserName = ""
		st.addresses.put(address.ID, address)
		address = withOwner(st, address)
		return nil
	})
	if err != nil {
		return domain.Address{}, err
	}
	return address, nil
}

func (r *AddressRepository) Delete(ctx context.Context, id string) error {
	return r.v.with(ctx, func(st *state) error {
		if !st.addresses.remove(id) {
			return apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, id)
		}
		return nil
	})
}

func (r *AddressRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	var removed int64
	err := r.v.with(ctx, func(st *state) error {
		var ids []string
		st.addresses.each(func(a domain.Address) bool {
			if a.UserID == userID {
				ids = append(ids, a.ID)
			}
			return true
		})
		for _, id := range ids {
			st.addresses.remove(id)
		}
		removed = int64(len(ids))
		return nil
	})
	return removed, err
}
