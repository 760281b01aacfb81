package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// escapeLike escapa los comodines de LIKE para que el texto del usuario se compare literal.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// tables nombres de tabla y FK según el tipo de movimiento.
type tables struct {
	movement string // despacho | recepcion
	photo    string // foto_despacho | foto_recepcion
	photoFK  string // despacho_id | recepcion_id
}

func tablesFor(kind entity.MovementKind) (tables, error) {
	switch kind {
	case entity.KindDispatch:
		return tables{movement: "despacho", photo: "foto_despacho", photoFK: "despacho_id"}, nil
	case entity.KindReceipt:
		return tables{movement: "recepcion", photo: "foto_recepcion", photoFK: "recepcion_id"}, nil
	default:
		return tables{}, fmt.Errorf("tipo de movimiento desconocido: %q", kind)
	}
}
