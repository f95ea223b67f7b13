package integrity

import (
	"context"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
)

// DefaultAddressManager mantém no máximo um endereço padrão por usuário.
// A ordem é sempre desmarcar o padrão antigo e só então gravar o novo, dentro
// da mesma unidade de trabalho. Toda transição bloqueia primeiro a linha do
// usuário e só depois as linhas de endereço.
type DefaultAddressManager struct {
	repos  domain.Repositories
	logger logger.Logger
}

func NewDefaultAddressManager(repos domain.Repositories, logger logger.Logger) DefaultAddressManager {
	return DefaultAddressManager{repos: repos, logger: logger}
}

// Lock resolve o endereço id, bloqueia o usuário dono e relê o endereço com
// bloqueio. Deve preceder BeforeUpdate.
func (m DefaultAddressManager) Lock(ctx context.Context, id string) (domain.Address, error) {
	current, err := NewResolver(m.repos).Address(ctx, id)
	if err != nil {
		return domain.Address{}, err
	}
	if err := m.repos.Users.Lock(ctx, current.UserID); err != nil {
		return domain.Address{}, err
	}
	addresses, err := m.repos.Addresses.FindAll(ctx, domain.AddressFilter{ID: id, ForUpdate: true})
	if err != nil {
		return domain.Address{}, err
	}
	if len(addresses) == 0 {
		return domain.Address{}, apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, id)
	}
	return addresses[0], nil
}

// BeforeCreate desmarca o padrão atual do usuário quando o novo endereço chega como padrão.
func (m DefaultAddressManager) BeforeCreate(ctx context.Context, address domain.Address) error {
	if !address.IsDefault {
		return nil
	}
	if err := m.repos.Users.Lock(ctx, address.UserID); err != nil {
		return err
	}
	return m.unsetDefaults(ctx, address.UserID, "")
}

// BeforeUpdate só age na transição false -> true. Desmarcar ou manter o flag
// não toca nenhum outro endereço. O usuário já está bloqueado por Lock.
func (m DefaultAddressManager) BeforeUpdate(ctx context.Context, before, after domain.Address) error {
	if before.IsDefault || !after.IsDefault {
		return nil
	}
	return m.unsetDefaults(ctx, before.UserID, before.ID)
}

// SetDefault torna o endereço id o padrão do usuário. O endereço precisa
// pertencer ao usuário. Se ele já é o padrão, nada é gravado.
func (m DefaultAddressManager) SetDefault(ctx context.Context, id, userID string) (domain.Address, error) {
	if err := m.repos.Users.Lock(ctx, userID); err != nil {
		if apperror.IsNotFound(err) {
			return domain.Address{}, apperror.NewNotFoundError(domain.EntityAddress, domain.FieldID, id)
		}
		return domain.Address{}, err
	}

	target, err := NewResolver(m.repos).UserAddress(ctx, userID, id)
	if err != nil {
		return domain.Address{}, err
	}
	if target.IsDefault {
		m.logger.Debug("Endereço já é o padrão, nada a gravar.", map[string]interface{}{"address_id": id, "user_id": userID})
		return target, nil
	}

	if err := m.unsetDefaults(ctx, userID, id); err != nil {
		return domain.Address{}, err
	}

	target.IsDefault = true
	return m.repos.Addresses.Save(ctx, target)
}

// unsetDefaults bloqueia os endereços do usuário e desmarca os padrões, exceto keepID.
// Endereços que já não são padrão não são regravados.
func (m DefaultAddressManager) unsetDefaults(ctx context.Context, userID, keepID string) error {
	addresses, err := m.repos.Addresses.FindAll(ctx, domain.AddressFilter{UserID: userID, ForUpdate: true})
	if err != nil {
		return err
	}

	for _, address := range addresses {
		if !address.IsDefault || address.ID == keepID {
			continue
		}
		address.IsDefault = false
		if _, err := m.repos.Addresses.Save(ctx, address); err != nil {
			return err
		}
		m.logger.Debug("Endereço padrão anterior desmarcado.", map[string]interface{}{"address_id": address.ID, "user_id": userID})
	}
	return nil
}
