// Package memrepo guarda usuários, produtos e endereços em memória.
// Usado com STORAGE_DRIVER=memory e nos testes dos serviços.
package memrepo

import (
	"context"
	"sync"
	"time"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
)

// table mantém as linhas por ID preservando a ordem de inserção.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]T{}}
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{rows: make(map[string]T, len(t.rows)), order: make([]string, len(t.order))}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	copy(c.order, t.order)
	return c
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, k := range t.order {
		if k == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) each(fn func(v T) bool) {
	for _, id := range t.order {
		if !fn(t.rows[id]) {
			return
		}
	}
}

type state struct {
	users     *table[domain.User]
	products  *table[domain.Product]
	addresses *table[domain.Address]
}

func (s *state) clone() *state {
	return &state{
		users:     s.users.clone(),
		products:  s.products.clone(),
		addresses: s.addresses.clone(),
	}
}

// Store é o armazenamento em memória. Uma unidade de trabalho trabalha sobre uma
// cópia do estado e só a publica no commit; as demais operações esperam o mutex.
type Store struct {
	mu     sync.Mutex
	data   *state
	now    func() time.Time
	logger logger.Logger
}

// NewStore cria um armazenamento vazio.
func NewStore(log logger.Logger) *Store {
	return &Store{
		data: &state{
			users:     newTable[domain.User](),
			products:  newTable[domain.Product](),
			addresses: newTable[domain.Address](),
		},
		now:    func() time.Time { return time.Now().UTC() },
		logger: log,
	}
}

// view liga os repositórios ao estado publicado (snapshot == nil) ou à cópia de uma transação.
type view struct {
	store    *Store
	snapshot *state
}

func (v view) with(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return apperror.NewStorageError("contexto encerrado", err)
	}
	if v.snapshot != nil {
		return fn(v.snapshot)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

func (v view) repositories() domain.Repositories {
	return domain.Repositories{
		Users:     &UserRepository{v: v},
		Products:  &ProductRepository{v: v},
		Addresses: &AddressRepository{v: v},
	}
}

// Repositories retorna repositórios fora de transação. Não devem ser usados dentro de Do.
func (s *Store) Repositories() domain.Repositories {
	return view{store: s}.repositories()
}

// Do executa fn sobre uma cópia do estado; a cópia vira o estado publicado
// somente se fn retornar nil. Unidades de trabalho são serializadas.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return apperror.NewStorageError("contexto encerrado", err)
	}

	snapshot := s.data.clone()
	if err := fn(ctx, view{store: s, snapshot: snapshot}.repositories()); err != nil {
		s.logger.Debug("Unidade de trabalho em memória desfeita.", map[string]interface{}{"error": err.Error()})
		return err
	}

	s.data = snapshot
	return nil
}
