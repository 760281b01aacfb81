package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/application/validation"
	"github.com/skunksss/FP-Registrapp/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestStruct_RequestValido(t *testing.T) {
	err := validation.Struct(dto.CreateMovementRequest{
		NumeroGuia: "GD-001",
		RutEmpresa: "12.345.678-5",
		Latitud:    ptr(-33.45),
		Longitud:   ptr(-70.66),
	})
	assert.NoError(t, err)
}

func TestStruct_RUTEmpresaInvalido(t *testing.T) {
	err := validation.Struct(dto.CreateMovementRequest{NumeroGuia: "GD-001", RutEmpresa: "12345678-6"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "RUT inválido: dígito verificador incorrecto", ve.Fields["rut_empresa"])
}

func TestStruct_VariosCampos(t *testing.T) {
	err := validation.Struct(dto.CreateMovementRequest{
		RutEmpresa: "12.3",
		Latitud:    ptr(91.0),
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "es obligatorio", ve.Fields["numero_guia"])
	assert.Equal(t, "RUT inválido: formato incorrecto", ve.Fields["rut_empresa"])
	assert.Equal(t, "debe ser menor o igual a 90", ve.Fields["latitud"])
}

func TestStruct_UpdateParcialSoloValidaLoPresente(t *testing.T) {
	assert.NoError(t, validation.Struct(dto.UpdateMovementRequest{}))

	err := validation.Struct(dto.UpdateMovementRequest{RutEmpresa: ptr("1-9")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "rut_empresa")
}

func TestStruct_TagRUTRegistrado(t *testing.T) {
	type conRUT struct {
		Rut string `json:"rut" validate:"rut"`
	}
	assert.NotPanics(t, func() {
		assert.NoError(t, validation.Struct(conRUT{Rut: "19.100.681-K"}))
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, validation.Struct(conRUT{Rut: "19.100.681-1"}), &ve)
	assert.Equal(t, "RUT inválido: dígito verificador incorrecto", ve.Fields["rut"])
}

func TestRUTMessage(t *testing.T) {
	assert.Empty(t, validation.RUTMessage("19.100.681-K"))
	assert.NotEmpty(t, validation.RUTMessage("abc"))
}
