package history

import (
	"fmt"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// StorageError envuelve una falla del puerto de persistencia durante una consulta de historial.
// Incluye cancelaciones y timeouts del contexto; el motor no reintenta.
type StorageError struct {
	Kind entity.MovementKind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("historial: consultar %s: %v", e.Kind.Plural(), e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
