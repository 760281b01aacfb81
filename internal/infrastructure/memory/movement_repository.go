// Package memory implementa los puertos de persistencia en memoria. Se usa en tests y
// para levantar la API sin PostgreSQL (DB_DRIVER=memory).
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo guarda despachos y recepciones en mapas separados por tipo, con IDs
// independientes por tipo (igual que dos tablas).
type MovementRepo struct {
	mu     sync.RWMutex
	nextID map[entity.MovementKind]int64
	rows   map[entity.MovementKind]map[int64]*entity.Movement
}

// NewMovementRepository construye un repositorio vacío.
func NewMovementRepository() *MovementRepo {
	return &MovementRepo{
		nextID: make(map[entity.MovementKind]int64),
		rows:   make(map[entity.MovementKind]map[int64]*entity.Movement),
	}
}

// Create asigna ID (y fecha si viene vacía) y guarda una copia.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID[m.Kind]++
	m.ID = r.nextID[m.Kind]
	if m.Date.IsZero() {
		m.Date = time.Now().UTC()
	}
	if r.rows[m.Kind] == nil {
		r.rows[m.Kind] = make(map[int64]*entity.Movement)
	}
	r.rows[m.Kind][m.ID] = cloneMovement(m)
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, kind entity.MovementKind, id int64) (*entity.Movement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rows[kind][id]
	if !ok {
		return nil, nil
	}
	return cloneMovement(m), nil
}

// Update reemplaza los campos editables; domain.ErrNotFound si no existe.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[m.Kind][m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.GuideNumber = m.GuideNumber
	cur.CompanyRUT = m.CompanyRUT
	cur.Note = m.Note
	cur.Latitude = m.Latitude
	cur.Longitude = m.Longitude
	return nil
}

// Delete elimina el movimiento; no falla si no existe.
func (r *MovementRepo) Delete(ctx context.Context, kind entity.MovementKind, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows[kind], id)
	return nil
}

// ListByUser lista los movimientos de userID, más recientes primero.
func (r *MovementRepo) ListByUser(ctx context.Context, kind entity.MovementKind, userID int64, limit, offset int) ([]*entity.Movement, error) {
	return r.FindMovementsPage(ctx, kind, userID, repository.MovementFilter{}, limit, offset)
}

// ListAll lista los movimientos de todos los usuarios.
func (r *MovementRepo) ListAll(ctx context.Context, kind entity.MovementKind, limit, offset int) ([]*entity.Movement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	list := make([]*entity.Movement, 0, len(r.rows[kind]))
	for _, m := range r.rows[kind] {
		list = append(list, cloneMovement(m))
	}
	r.mu.RUnlock()
	sortNewestFirst(list)
	return window(list, limit, offset), nil
}

// CountAll cuenta los movimientos de todos los usuarios.
func (r *MovementRepo) CountAll(ctx context.Context, kind entity.MovementKind) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows[kind]), nil
}

// FindMovements devuelve los movimientos de ownerID que cumplen f, sin orden definido.
func (r *MovementRepo) FindMovements(ctx context.Context, kind entity.MovementKind, ownerID int64, f repository.MovementFilter) ([]*entity.Movement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	match := newMatcher(f)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*entity.Movement
	for _, m := range r.rows[kind] {
		if m.UserID == ownerID && match(m) {
			list = append(list, cloneMovement(m))
		}
	}
	return list, nil
}

// CountMovements cuenta los movimientos de ownerID que cumplen f.
func (r *MovementRepo) CountMovements(ctx context.Context, kind entity.MovementKind, ownerID int64, f repository.MovementFilter) (int, error) {
	list, err := r.FindMovements(ctx, kind, ownerID, f)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// FindMovementsPage ordena por fecha desc, id desc y aplica limit/offset.
func (r *MovementRepo) FindMovementsPage(ctx context.Context, kind entity.MovementKind, ownerID int64, f repository.MovementFilter, limit, offset int) ([]*entity.Movement, error) {
	list, err := r.FindMovements(ctx, kind, ownerID, f)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return window(list, limit, offset), nil
}

// newMatcher compila f en un predicado. El texto se compara en minúsculas a ambos lados, como ILIKE
// en PostgreSQL: sin case folding, así "ß" no calza con "SS".
func newMatcher(f repository.MovementFilter) func(*entity.Movement) bool {
	f = f.Normalized()
	fold := cases.Lower(language.Und)
	rutNeedle := fold.String(f.CompanyRUT)
	guideNeedle := fold.String(f.GuideNumber)
	lower, upper := f.Lower(), f.UpperExclusive()
	return func(m *entity.Movement) bool {
		if rutNeedle != "" && !strings.Contains(fold.String(m.CompanyRUT), rutNeedle) {
			return false
		}
		if guideNeedle != "" && !strings.Contains(fold.String(m.GuideNumber), guideNeedle) {
			return false
		}
		if lower != nil && m.Date.Before(*lower) {
			return false
		}
		if upper != nil && !m.Date.Before(*upper) {
			return false
		}
		return true
	}
}

func sortNewestFirst(list []*entity.Movement) {
	slices.SortFunc(list, func(a, b *entity.Movement) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}

func window(list []*entity.Movement, limit, offset int) []*entity.Movement {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []*entity.Movement{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	c := *m
	c.Photos = nil
	return &c
}
