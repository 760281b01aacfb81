package entity

import "time"

// HistoryEntry es la proyección de solo lectura que une despachos y recepciones en el historial.
// Kind es el discriminador; nunca se persiste.
type HistoryEntry struct {
	ID          int64
	Kind        MovementKind
	GuideNumber string
	CompanyRUT  string
	Date        time.Time
}

// NewHistoryEntry proyecta un movimiento al historial.
func NewHistoryEntry(m *Movement) HistoryEntry {
	return HistoryEntry{
		ID:          m.ID,
		Kind:        m.Kind,
		GuideNumber: m.GuideNumber,
		CompanyRUT:  m.CompanyRUT,
		Date:        m.Date,
	}
}
