package repository

import (
	"context"
	"strings"
	"time"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// MovementFilter criterios de búsqueda del historial. Los campos vacíos no restringen.
// CompanyRUT y GuideNumber son coincidencias parciales sin distinguir mayúsculas.
// DateFrom y DateTo son fechas de calendario inclusivas.
type MovementFilter struct {
	CompanyRUT  string
	GuideNumber string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// Normalized limpia espacios y quita los puntos del RUT (en base se guarda "12345678-5").
func (f MovementFilter) Normalized() MovementFilter {
	out := f
	out.GuideNumber = strings.TrimSpace(f.GuideNumber)
	out.CompanyRUT = strings.ReplaceAll(strings.TrimSpace(f.CompanyRUT), ".", "")
	return out
}

// Lower devuelve el límite inferior (inicio del día de DateFrom) o nil.
func (f MovementFilter) Lower() *time.Time {
	if f.DateFrom == nil {
		return nil
	}
	t := startOfDay(*f.DateFrom)
	return &t
}

// UpperExclusive devuelve el inicio del día siguiente a DateTo o nil, para incluir todo DateTo.
func (f MovementFilter) UpperExclusive() *time.Time {
	if f.DateTo == nil {
		return nil
	}
	t := startOfDay(*f.DateTo).AddDate(0, 0, 1)
	return &t
}

// IsZero indica si el filtro no impone restricciones.
func (f MovementFilter) IsZero() bool {
	n := f.Normalized()
	return n.CompanyRUT == "" && n.GuideNumber == "" && n.DateFrom == nil && n.DateTo == nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MovementRepository define el puerto de persistencia para despachos y recepciones.
// Los métodos Get devuelven (nil, nil) cuando el registro no existe.
type MovementRepository interface {
	MovementFinder
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, kind entity.MovementKind, id int64) (*entity.Movement, error)
	Update(ctx context.Context, m *entity.Movement) error
	Delete(ctx context.Context, kind entity.MovementKind, id int64) error
	ListByUser(ctx context.Context, kind entity.MovementKind, userID int64, limit, offset int) ([]*entity.Movement, error)
	ListAll(ctx context.Context, kind entity.MovementKind, limit, offset int) ([]*entity.Movement, error)
	CountAll(ctx context.Context, kind entity.MovementKind) (int, error)
}

// MovementFinder es la parte de lectura filtrada que consume el historial.
// FindMovements no garantiza orden. FindMovementsPage ordena por fecha desc, id desc.
type MovementFinder interface {
	FindMovements(ctx context.Context, kind entity.MovementKind, ownerID int64, f MovementFilter) ([]*entity.Movement, error)
	CountMovements(ctx context.Context, kind entity.MovementKind, ownerID int64, f MovementFilter) (int, error)
	FindMovementsPage(ctx context.Context, kind entity.MovementKind, ownerID int64, f MovementFilter, limit, offset int) ([]*entity.Movement, error)
}
