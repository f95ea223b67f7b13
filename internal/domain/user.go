package domain

import (
	"strings"
	"time"
)

// User representa a entidade de usuário do cadastro.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleCustomer UserRole = "CUSTOMER"
)

// ParseUserRole aceita o papel em qualquer caixa ("admin", "Admin", "ADMIN").
func ParseUserRole(s string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(s)))
	switch role {
	case RoleAdmin, RoleCustomer:
		return role, true
	}
	return "", false
}

// UserRequest é o payload de criação de usuário.
type UserRequest struct {
	Name  string   `json:"name" validate:"required,max=100"`
	Email string   `json:"email" validate:"required,email,max=150"`
	Phone string   `json:"phone" validate:"omitempty,max=20"`
	Role  UserRole `json:"role" validate:"omitempty,oneof=ADMIN CUSTOMER"`
}

// UserUpdate é o payload de atualização parcial: campos nil não são alterados.
type UserUpdate struct {
	Name  *string   `json:"name" validate:"omitempty,max=100"`
	Email *string   `json:"email" validate:"omitempty,email,max=150"`
	Phone *string   `json:"phone" validate:"omitempty,max=20"`
	Role  *UserRole `json:"role" validate:"omitempty,oneof=ADMIN CUSTOMER"`
}

// Apply copia para o usuário apenas os campos informados.
func (u UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
}

// UserFilter define os critérios de busca de usuários. O filtro zero retorna todos.
type UserFilter struct {
	Email        string
	Role         UserRole
	NameContains string
}
