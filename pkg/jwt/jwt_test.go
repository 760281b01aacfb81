package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skunksss/FP-Registrapp/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	token, err := jwt.Generate(testSecret, 42, "operador", "registrapp", 60)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := jwt.Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "operador", role)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", 1, "admin", "registrapp", 60)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)

	_, _, err = jwt.Parse("", "x.y.z")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate(testSecret, 1, "admin", "registrapp", 60)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro-secreto", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := jwt.Generate(testSecret, 1, "admin", "registrapp", -5)
	require.NoError(t, err)

	_, _, err = jwt.Parse(testSecret, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestParse_AlgoritmoNoHMAC(t *testing.T) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.Claims{UserID: 1, Role: "admin"})
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = jwt.Parse(testSecret, signed)
	assert.Error(t, err)
}

func TestParse_TokenMalformado(t *testing.T) {
	_, _, err := jwt.Parse(testSecret, "no-es-un-token")
	assert.Error(t, err)
}
