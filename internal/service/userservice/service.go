package userservice

import (
	"context"
	"errors"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/validation"
	"gorecords/internal/service/integrity"
)

// Service implementa as operações públicas de usuários.
// Leituras usam repos direto; toda escrita roda em uma unidade de trabalho.
type Service struct {
	uow    domain.UnitOfWork
	repos  domain.Repositories
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Usuários.
func NewService(uow domain.UnitOfWork, repos domain.Repositories, logger logger.Logger) *Service {
	return &Service{uow: uow, repos: repos, logger: logger}
}

// fail registra a falha no nível adequado e a devolve sem alteração.
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

// List retorna todos os usuários.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	s.logger.Debug("Listando usuários.", nil)

	users, err := s.repos.Users.FindAll(ctx, domain.UserFilter{})
	if err != nil {
		return nil, s.fail("Falha ao listar usuários.", err, nil)
	}
	return users, nil
}

// GetByID busca um usuário pelo ID.
func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	s.logger.Debug("Buscando usuário por ID.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return domain.User{}, s.fail("ID de usuário inválido.", err, map[string]interface{}{"id": id})
	}

	user, err := integrity.NewResolver(s.repos).User(ctx, id)
	if err != nil {
		return domain.User{}, s.fail("Usuário não encontrado.", err, map[string]interface{}{"id": id})
	}
	return user, nil
}

// GetByEmail busca um usuário pelo email.
func (s *Service) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	s.logger.Debug("Buscando usuário por email.", map[string]interface{}{"email": email})

	user, err := integrity.NewResolver(s.repos).UserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, s.fail("Usuário não encontrado por email.", err, map[string]interface{}{"email": email})
	}
	return user, nil
}

// ListByRole lista os usuários de um papel (ADMIN ou CUSTOMER, em qualquer caixa).
func (s *Service) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	s.logger.Debug("Listando usuários por papel.", map[string]interface{}{"role": role})

	parsed, ok := domain.ParseUserRole(role)
	if !ok {
		err := apperror.NewValidationError("role", "deve ser um de: ADMIN CUSTOMER")
		return nil, s.fail("Papel de usuário inválido.", err, map[string]interface{}{"role": role})
	}

	users, err := s.repos.Users.FindAll(ctx, domain.UserFilter{Role: parsed})
	if err != nil {
		return nil, s.fail("Falha ao listar usuários por papel.", err, nil)
	}
	return users, nil
}

// SearchByName lista os usuários cujo nome contém o trecho informado, sem diferenciar maiúsculas.
func (s *Service) SearchByName(ctx context.Context, name string) ([]domain.User, error) {
	s.logger.Debug("Buscando usuários por nome.", map[string]interface{}{"name": name})

	users, err := s.repos.Users.FindAll(ctx, domain.UserFilter{NameContains: name})
	if err != nil {
		return nil, s.fail("Falha ao buscar usuários por nome.", err, nil)
	}
	return users, nil
}

// Create cadastra um usuário. O papel padrão é CUSTOMER.
func (s *Service) Create(ctx context.Context, req domain.UserRequest) (domain.User, error) {
	s.logger.Debug("Iniciando criação de usuário no serviço.", map[string]interface{}{"email": req.Email})

	if err := validation.Struct(req); err != nil {
		return domain.User{}, s.fail("Payload de usuário inválido.", err, map[string]interface{}{"email": req.Email})
	}

	user := domain.User{Name: req.Name, Email: req.Email, Phone: req.Phone, Role: req.Role}
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}

	var created domain.User
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if err := integrity.NewUniquenessGuard(tx).User(ctx, user, nil); err != nil {
			return err
		}
		var err error
		created, err = tx.Users.Save(ctx, user)
		return err
	})
	if err != nil {
		return domain.User{}, s.fail("Falha ao criar usuário.", err, map[string]interface{}{"email": req.Email})
	}

	s.logger.Info("Usuário criado com sucesso.", map[string]interface{}{"id": created.ID, "email": created.Email})
	return created, nil
}

// Update altera apenas os campos informados.
func (s *Service) Update(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	s.logger.Debug("Iniciando atualização de usuário no serviço.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return domain.User{}, s.fail("ID de usuário inválido.", err, map[string]interface{}{"id": id})
	}
	if err := validation.Struct(upd); err != nil {
		return domain.User{}, s.fail("Payload de atualização de usuário inválido.", err, map[string]interface{}{"id": id})
	}

	var updated domain.User
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		existing, err := integrity.NewResolver(tx).User(ctx, id)
		if err != nil {
			return err
		}

		user := existing
		upd.Apply(&user)
		if err := integrity.NewUniquenessGuard(tx).User(ctx, user, &existing); err != nil {
			return err
		}

		updated, err = tx.Users.Save(ctx, user)
		return err
	})
	if err != nil {
		return domain.User{}, s.fail("Falha ao atualizar usuário.", err, map[string]interface{}{"id": id})
	}

	s.logger.Info("Usuário atualizado com sucesso.", map[string]interface{}{"id": updated.ID})
	return updated, nil
}

// Delete remove o usuário e todos os seus endereços na mesma unidade de trabalho.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("Iniciando remoção de usuário no serviço.", map[string]interface{}{"id": id})

	if err := validation.UUID(domain.FieldID, id); err != nil {
		return s.fail("ID de usuário inválido.", err, map[string]interface{}{"id": id})
	}

	var removedAddresses int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if err := integrity.NewResolver(tx).UserExists(ctx, id); err != nil {
			return err
		}
		// Mesma ordem de bloqueio das trocas de endereço padrão: usuário, depois endereços.
		if err := tx.Users.Lock(ctx, id); err != nil {
			return err
		}
		var err error
		if removedAddresses, err = tx.Addresses.DeleteByUser(ctx, id); err != nil {
			return err
		}
		return tx.Users.Delete(ctx, id)
	})
	if err != nil {
		return s.fail("Falha ao remover usuário.", err, map[string]interface{}{"id": id})
	}

	s.logger.Info("Usuário removido com sucesso.", map[string]interface{}{"id": id, "addresses_removed": removedAddresses})
	return nil
}

// Count retorna o total de usuários.
func (s *Service) Count(ctx context.Context) (int64, error) {
	count, err := s.repos.Users.Count(ctx, domain.UserFilter{})
	if err != nil {
		return 0, s.fail("Falha ao contar usuários.", err, nil)
	}
	return count, nil
}
