package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind distingue los dos tipos de movimiento que se registran.
type MovementKind string

// Tipos de movimiento. El valor es el que viaja en el campo "tipo" de la API.
const (
	KindDispatch MovementKind = "despacho"  // salida de mercadería
	KindReceipt  MovementKind = "recepcion" // entrada de mercadería
)

// MovementKinds enumera los tipos en el orden usado para desempatar el historial.
var MovementKinds = []MovementKind{KindDispatch, KindReceipt}

// Valid indica si k es un tipo conocido.
func (k MovementKind) Valid() bool {
	return k == KindDispatch || k == KindReceipt
}

// Plural devuelve el nombre de colección ("despachos", "recepciones").
func (k MovementKind) Plural() string {
	switch k {
	case KindDispatch:
		return "despachos"
	case KindReceipt:
		return "recepciones"
	default:
		return string(k)
	}
}

// Label devuelve el nombre legible para documentos y logs.
func (k MovementKind) Label() string {
	switch k {
	case KindDispatch:
		return "Despacho"
	case KindReceipt:
		return "Recepción"
	default:
		return string(k)
	}
}

// Movement es un despacho o una recepción registrado por un usuario.
type Movement struct {
	ID          int64
	Kind        MovementKind
	GuideNumber string
	CompanyRUT  string // forma canónica "12345678-5"
	UserID      int64
	Date        time.Time
	Note        string
	Latitude    decimal.NullDecimal
	Longitude   decimal.NullDecimal
	Photos      []*Photo
}

// OwnedBy indica si el movimiento pertenece a userID.
func (m *Movement) OwnedBy(userID int64) bool {
	return m != nil && m.UserID == userID
}
