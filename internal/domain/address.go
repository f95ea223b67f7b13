package domain

import "time"

// Address representa um endereço pertencente a um único usuário.
// Para cada usuário, no máximo um endereço tem IsDefault = true.
type Address struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"` // somente leitura, vem do usuário dono
	Street      string    `json:"street"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	Country     string    `json:"country"`
	AddressType string    `json:"address_type"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddressRequest é o payload de criação (e do PUT, que valida todos os campos).
type AddressRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	Street      string `json:"street" validate:"required,max=200"`
	City        string `json:"city" validate:"required,max=100"`
	State       string `json:"state" validate:"required,max=100"`
	ZipCode     string `json:"zip_code" validate:"required,zipcode"`
	Country     string `json:"country" validate:"required,max=100"`
	AddressType string `json:"address_type" validate:"max=50"`
	IsDefault   *bool  `json:"is_default"`
}

// Update converte o payload completo em atualização parcial. UserID é ignorado:
// um endereço nunca troca de dono.
func (r AddressRequest) Update() AddressUpdate {
	return AddressUpdate{
		Street:      &r.Street,
		City:        &r.City,
		State:       &r.State,
		ZipCode:     &r.ZipCode,
		Country:     &r.Country,
		AddressType: &r.AddressType,
		IsDefault:   r.IsDefault,
	}
}

// AddressUpdate é o payload de atualização parcial: campos nil não são alterados.
type AddressUpdate struct {
	Street      *string `json:"street" validate:"omitempty,max=200"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	State       *string `json:"state" validate:"omitempty,max=100"`
	ZipCode     *string `json:"zip_code" validate:"omitempty,zipcode"`
	Country     *string `json:"country" validate:"omitempty,max=100"`
	AddressType *string `json:"address_type" validate:"omitempty,max=50"`
	IsDefault   *bool   `json:"is_default"`
}

// Apply copia para o endereço apenas os campos informados.
func (u AddressUpdate) Apply(address *Address) {
	if u.Street != nil {
		address.Street = *u.Street
	}
	if u.City != nil {
		address.City = *u.City
	}
	if u.State != nil {
		address.State = *u.State
	}
	if u.ZipCode != nil {
		address.ZipCode = *u.ZipCode
	}
	if u.Country != nil {
		address.Country = *u.Country
	}
	if u.AddressType != nil {
		address.AddressType = *u.AddressType
	}
	if u.IsDefault != nil {
		address.IsDefault = *u.IsDefault
	}
}

// AddressFilter define os critérios de busca de endereços. O filtro zero retorna todos.
type AddressFilter struct {
	ID          string
	UserID      string
	AddressType string // igualdade sem diferenciar maiúsculas
	IsDefault   *bool
	City        string // igualdade sem diferenciar maiúsculas
	State       string
	Country     string

	// ForUpdate bloqueia as linhas retornadas até o fim da unidade de trabalho.
	ForUpdate bool
}
