package addressservice

import (
	"context"
	"errors"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/validation"
	"gorecords/internal/service/integrity"
)

// Service implementa as operações públicas de endereços e mantém a regra de
// no máximo um endereço padrão por usuário.
type Service struct {
	uow    domain.UnitOfWork
	repos  domain.Repositories
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Endereços.
func NewService(uow domain.UnitOfWork, repos domain.Repositories, logger logger.Logger) *Service {
	return &Service{uow: uow, repos: repos, logger: logger}
}

func (s *Service) fail(msg string, err error, fields map[string]interface{}) error {
	var storageErr *apperror.StorageError
	if errors.As(err, &storageErr) {
		s.logger.Error(msg, err)
		return err
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["error"] = err.Error()
	s.logger.Warn(msg, fields)
	return err
}

func (s *Service) list(ctx context.Context, filter domain.AddressFilter) ([]domain.Address, error) {
	addresses, err := s.repos.Addresses.FindAll(ctx, filter)
	if err != nil {
		return nil, s.fail("Falha ao listar endereços.", err, nil)
	}
	return addresses, nil
}

// List lista todos os endereços.
func (s *Service) List(ctx context.Context) ([]domain.Address, error) {
	s.logger.Debug("Listando endereços.", nil)
	return s.list(ctx, domain.AddressFilter{})
}

// GetByID busca um endereço pelo ID.
func (s *Service) GetByID(ctx context.Context, id string) (domain.Address, error) {
	s.logger.Debug("Buscando endereço por ID.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return domain.Address{}, s.fail("ID de endereço inválido.", err, map[string]interface{}{"id": id})
	}

	address, err := integrity.NewResolver(s.repos).Address(ctx, id)
	if err != nil {
		return domain.Address{}, s.fail("Endereço não encontrado.", err, map[string]interface{}{"id": id})
	}
	return address, nil
}

// ListByUser lista os endereços do usuário. Usuário inexistente resulta em lista vazia.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	s.logger.Debug("Listando endereços do usuário.", map[string]interface{}{"user_id": userID})

	if err := validation.UUID(domain.FieldUserID, userID); err != nil {
		return nil, s.fail("ID de usuário inválido.", err, map[string]interface{}{"user_id": userID})
	}
	return s.list(ctx, domain.AddressFilter{UserID: userID})
}

// ListByUserAndType compara o tipo sem diferenciar maiúsculas.
func (s *Service) ListByUserAndType(ctx context.Context, userID, addressType string) ([]domain.Address, error) {
	s.logger.Debug("Listando endereços do usuário por tipo.", map[string]interface{}{"user_id": userID, "address_type": addressType})

	if err := validation.UUID(domain.FieldUserID, userID); err != nil {
		return nil, s.fail("ID de usuário inválido.", err, map[string]interface{}{"user_id": userID})
	}
	return s.list(ctx, domain.AddressFilter{UserID: userID, AddressType: addressType})
}

// GetDefaultForUser retorna o endereço padrão do usuário.
func (s *Service) GetDefaultForUser(ctx context.Context, userID string) (domain.Address, error) {
	s.logger.Debug("Buscando endereço padrão do usuário.", map[string]interface{}{"user_id": userID})

	if err := validation.UUID(domain.FieldUserID, userID); err != nil {
		return domain.Address{}, s.fail("ID de usuário inválido.", err, map[string]interface{}{"user_id": userID})
	}

	address, err := integrity.NewResolver(s.repos).DefaultAddress(ctx, userID)
	if err != nil {
		return domain.Address{}, s.fail("Endereço padrão não encontrado.", err, map[string]interface{}{"user_id": userID})
	}
	return address, nil
}

// ListByCity lista os endereços da cidade, sem diferenciar maiúsculas.
func (s *Service) ListByCity(ctx context.Context, city string) ([]domain.Address, error) {
	return s.list(ctx, domain.AddressFilter{City: city})
}

// ListByState lista os endereços do estado, sem diferenciar maiúsculas.
func (s *Service) ListByState(ctx context.Context, state string) ([]domain.Address, error) {
	return s.list(ctx, domain.AddressFilter{State: state})
}

// ListByCountry lista os endereços do país, sem diferenciar maiúsculas.
func (s *Service) ListByCountry(ctx context.Context, country string) ([]domain.Address, error) {
	return s.list(ctx, domain.AddressFilter{Country: country})
}

// CountByUser conta os endereços do usuário.
func (s *Service) CountByUser(ctx context.Context, userID string) (int64, error) {
	if err := validation.UUID(domain.FieldUserID, userID); err != nil {
		return 0, s.fail("ID de usuário inválido.", err, map[string]interface{}{"user_id": userID})
	}

	count, err := s.repos.Addresses.Count(ctx, domain.AddressFilter{UserID: userID})
	if err != nil {
		return 0, s.fail("Falha ao contar endereços.", err, nil)
	}
	return count, nil
}

// Create cadastra um endereço para um usuário existente. Se ele chegar como
// padrão, o padrão anterior do usuário é desmarcado antes.
func (s *Service) Create(ctx context.Context, req domain.AddressRequest) (domain.Address, error) {
	s.logger.Debug("Iniciando criação de endereço no serviço.", map[string]interface{}{"user_id": req.UserID})

	if err := validation.Struct(req); err != nil {
		return domain.Address{}, s.fail("Payload de endereço inválido.", err, map[string]interface{}{"user_id": req.UserID})
	}

	address := domain.Address{UserID: req.UserID}
	req.Update().Apply(&address)

	var created domain.Address
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if err := integrity.NewResolver(tx).UserExists(ctx, address.UserID); err != nil {
			return err
		}
		if err := integrity.NewDefaultAddressManager(tx, s.logger).BeforeCreate(ctx, address); err != nil {
			return err
		}
		var err error
		created, err = tx.Addresses.Save(ctx, address)
		return err
	})
	if err != nil {
		return domain.Address{}, s.fail("Falha ao criar endereço.", err, map[string]interface{}{"user_id": req.UserID})
	}

	s.logger.Info("Endereço criado com sucesso.", map[string]interface{}{"id": created.ID, "user_id": created.UserID, "is_default": created.IsDefault})
	return created, nil
}

// Replace atualiza o endereço exigindo o payload completo. user_id é ignorado.
func (s *Service) Replace(ctx context.Context, id string, req domain.AddressRequest) (domain.Address, error) {
	if err := validation.Struct(req); err != nil {
		return domain.Address{}, s.fail("Payload de endereço inválido.", err, map[string]interface{}{"id": id})
	}
	return s.Update(ctx, id, req.Update())
}

// Update altera apenas os campos informados. A promoção a padrão desmarca o
// padrão anterior; desmarcar não promove nenhum outro endereço.
func (s *Service) Update(ctx context.Context, id string, upd domain.AddressUpdate) (domain.Address, error) {
	s.logger.Debug("Iniciando atualização de endereço no serviço.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return domain.Address{}, s.fail("ID de endereço inválido.", err, map[string]interface{}{"id": id})
	}
	if err := validation.Struct(upd); err != nil {
		return domain.Address{}, s.fail("Payload de atualização de endereço inválido.", err, map[string]interface{}{"id": id})
	}

	var updated domain.Address
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		manager := integrity.NewDefaultAddressManager(tx, s.logger)
		existing, err := manager.Lock(ctx, id)
		if err != nil {
			return err
		}

		address := existing
		upd.Apply(&address)
		if err := manager.BeforeUpdate(ctx, existing, address); err != nil {
			return err
		}

		updated, err = tx.Addresses.Save(ctx, address)
		return err
	})
	if err != nil {
		return domain.Address{}, s.fail("Falha ao atualizar endereço.", err, map[string]interface{}{"id": id})
	}

	s.logger.Info("Endereço atualizado com sucesso.", map[string]interface{}{"id": updated.ID, "is_default": updated.IsDefault})
	return updated, nil
}

// SetDefault torna o endereço id o padrão do usuário userID. Repetir a chamada
// não grava nada.
func (s *Service) SetDefault(ctx context.Context, id, userID string) (domain.Address, error) {
	s.logger.Debug("Definindo endereço padrão.", map[string]interface{}{"id": id, "user_id": userID})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return domain.Address{}, s.fail("ID de endereço inválido.", err, map[string]interface{}{"id": id})
	}
	if err := validation.UUID(domain.FieldUserID, userID); err != nil {
		return domain.Address{}, s.fail("ID de usuário inválido.", err, map[string]interface{}{"user_id": userID})
	}

	var address domain.Address
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		var err error
		address, err = integrity.NewDefaultAddressManager(tx, s.logger).SetDefault(ctx, id, userID)
		return err
	})
	if err != nil {
		return domain.Address{}, s.fail("Falha ao definir endereço padrão.", err, map[string]interface{}{"id": id, "user_id": userID})
	}

	s.logger.Info("Endereço padrão definido com sucesso.", map[string]interface{}{"id": id, "user_id": userID})
	return address, nil
}

// Delete remove um endereço. Remover o padrão deixa o usuário sem padrão.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("Iniciando remoção de endereço no serviço.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return s.fail("ID de endereço inválido.", err, map[string]interface{}{"id": id})
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if _, err := integrity.NewResolver(tx).Address(ctx, id); err != nil {
			return err
		}
		return tx.Addresses.Delete(ctx, id)
	})
	if err != nil {
		return s.fail("Falha ao remover endereço.", err, map[string]interface{}{"id": id})
	}

	s.logger.Info("Endereço removido com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// DeleteAllForUser remove todos os endereços do usuário e retorna quantos foram removidos.
func (s *Service) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	s.logger.Debug("Removendo todos os endereços do usuário.", map[string]interface{}{"user_id": userID})

	if err := validation.UUID(domain.FieldUserID, userID); err != nil {
		return 0, s.fail("ID de usuário inválido.", err, map[string]interface{}{"user_id": userID})
	}

	var removed int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		var err error
		removed, err = tx.Addresses.DeleteByUser(ctx, userID)
		return err
	})
	if err != nil {
		return 0, s.fail("Falha ao remover endereços do usuário.", err, map[string]interface{}{"user_id": userID})
	}

	s.logger.Info("Endereços do usuário removidos.", map[string]interface{}{"user_id": userID, "removed": removed})
	return removed, nil
}
