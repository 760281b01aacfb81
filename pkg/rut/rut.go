// Package rut valida el Rol Único Tributario chileno (RUT) con el algoritmo módulo 11 del SII.
package rut

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat se devuelve cuando el RUT normalizado es muy corto o el cuerpo no es numérico.
	ErrFormat = errors.New("rut: formato inválido")
	// ErrChecksum se devuelve cuando el dígito verificador no coincide con el calculado.
	ErrChecksum = errors.New("rut: dígito verificador inválido")
)

const (
	minNormalizedLen = 8
	maxBodyLen       = 9
)

// RUT es un RUT ya validado: cuerpo numérico + dígito verificador (0-9 o 'K').
type RUT struct {
	Body  string
	Check byte
}

// String devuelve la forma canónica usada en base de datos: "12345678-5".
func (r RUT) String() string {
	return r.Body + "-" + string(r.Check)
}

// Normalized devuelve el RUT sin puntuación: "123456785".
func (r RUT) Normalized() string {
	return r.Body + string(r.Check)
}

// Formatted devuelve el RUT con separador de miles: "12.345.678-5".
func (r RUT) Formatted() string {
	n := len(r.Body)
	buf := make([]byte, 0, n+n/3+2)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, r.Body[i])
	}
	buf = append(buf, '-', r.Check)
	return string(buf)
}

// Normalize quita espacios, puntos y guiones y pasa a mayúsculas. No valida.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(".", "", "-", "", " ", "").Replace(s)
	return strings.ToUpper(s)
}

// Validate normaliza raw y comprueba formato y dígito verificador.
// Acepta "12.345.678-5", "12345678-5" o "123456785"; la 'k' minúscula se acepta.
func Validate(raw string) (RUT, error) {
	s := Normalize(raw)
	if len(s) < minNormalizedLen {
		return RUT{}, fmt.Errorf("%w: se requieren al menos %d caracteres, se recibieron %d", ErrFormat, minNormalizedLen, len(s))
	}
	body, check := s[:len(s)-1], s[len(s)-1]
	if len(body) > maxBodyLen {
		return RUT{}, fmt.Errorf("%w: el cuerpo admite a lo más %d dígitos", ErrFormat, maxBodyLen)
	}
	expected, err := CheckDigit(body)
	if err != nil {
		return RUT{}, err
	}
	if check != expected {
		return RUT{}, fmt.Errorf("%w: esperado %c, recibido %c", ErrChecksum, expected, check)
	}
	return RUT{Body: body, Check: check}, nil
}

// IsValid es un atajo booleano de Validate.
func IsValid(raw string) bool {
	_, err := Validate(raw)
	return err == nil
}

// CheckDigit calcula el dígito verificador del cuerpo (solo dígitos).
// Recorre de derecha a izquierda con multiplicadores 2..7 que vuelven a 2 después de 7.
func CheckDigit(body string) (byte, error) {
	if body == "" {
		return 0, fmt.Errorf("%w: cuerpo vacío", ErrFormat)
	}
	sum := 0
	multiplier := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: el cuerpo debe ser numérico", ErrFormat)
		}
		sum += int(c-'0') * multiplier
		multiplier++
		if multiplier > 7 {
			multiplier = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + dv), nil
	}
}
