package history

import (
	"strings"
	"time"
)

// DateLayout formato de las fechas de filtro (fecha_inicio, fecha_fin).
const DateLayout = "2006-01-02"

// ParseDate interpreta raw como fecha YYYY-MM-DD en UTC. Un valor vacío devuelve (nil, nil).
// El llamador decide qué hacer con un error; el historial trata la fecha como ausente.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
