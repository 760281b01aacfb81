// Package validation valida los DTO de entrada con go-playground/validator y traduce los errores
// a domain.ValidationError con el nombre JSON de cada campo.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/pkg/rut"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		// rut: dígito verificador módulo 11 (acepta puntos y guion).
		if err := validate.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
			return rut.IsValid(fl.Field().String())
		}); err != nil {
			panic("validation: registrar tag rut: " + err.Error())
		}
	})
	return validate
}

// Struct valida s. Devuelve nil, un *domain.ValidationError o el error de uso del validador.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := &domain.ValidationError{}
	for _, fe := range ves {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "rut":
		return RUTMessage(fmt.Sprint(fe.Value()))
	case "email":
		return "correo inválido"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
		}
		return "debe ser mayor o igual a " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener a lo más %s caracteres", fe.Param())
		}
		return "debe ser menor o igual a " + fe.Param()
	default:
		return "valor inválido (" + fe.Tag() + ")"
	}
}

// RUTMessage explica por qué raw no es un RUT válido; vacío si lo es.
func RUTMessage(raw string) string {
	_, err := rut.Validate(raw)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, rut.ErrChecksum):
		return "RUT inválido: dígito verificador incorrecto"
	default:
		return "RUT inválido: formato incorrecto"
	}
}
