package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperror "gorecords/internal/errors"
)

var (
	skuPattern     = regexp.MustCompile(`^[A-Z0-9-]*$`)
	zipCodePattern = regexp.MustCompile(`^[0-9]{5,20}$`)
)

// Instância global, reutilizada por todos os handlers e serviços.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Usa o nome do campo JSON nas mensagens (zip_code em vez de ZipCode).
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		return zipCodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return validPrice(fl.Field().Float())
	})

	return v
}

// validPrice aceita até 8 dígitos inteiros e 2 casas decimais.
func validPrice(price float64) bool {
	s := strconv.FormatFloat(price, 'f', -1, 64)
	s = strings.TrimPrefix(s, "-")
	integer, fraction, _ := strings.Cut(s, ".")
	return len(integer) <= 8 && len(fraction) <= 2
}

// Struct valida o payload pelas tags `validate` e converte as falhas em
// apperror.ValidationError (campo -> mensagem).
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return apperror.NewValidationErrors(fields)
}

// UUID valida um identificador recebido na rota ou na query.
func UUID(field, value string) error {
	if err := uuid.Validate(value); err != nil {
		return apperror.NewValidationError(field, "deve ser um UUID válido")
	}
	return nil
}

func message(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "max":
		if isText {
			return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no máximo %s", fe.Param())
	case "min":
		if isText {
			return fmt.Sprintf("deve ter no mínimo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no mínimo %s", fe.Param())
	case "gte":
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	case "lte":
		return fmt.Sprintf("deve ser menor ou igual a %s", fe.Param())
	case "email":
		return "email inválido"
	case "uuid":
		return "deve ser um UUID válido"
	case "oneof":
		return fmt.Sprintf("deve ser um de: %s", fe.Param())
	case "sku":
		return "deve conter apenas letras maiúsculas, números e hífens"
	case "zipcode":
		return "deve conter de 5 a 20 dígitos"
	case "price":
		return "deve ter no máximo 8 dígitos inteiros e 2 decimais"
	}
	return fmt.Sprintf("inválido (%s)", fe.Tag())
}
