// Package history arma el historial paginado de movimientos de un usuario: consulta despachos
// y recepciones al puerto de persistencia, los une en un único listado ordenado por fecha
// descendente y devuelve la página solicitada.
//
// El motor no guarda estado entre llamadas; puede usarse concurrentemente.
package history

import (
	"cmp"
	"context"
	"slices"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
)

// DefaultPerPage tamaño de página cuando no se indica uno válido.
const DefaultPerPage = 10

// Filter criterios del historial (ver repository.MovementFilter).
type Filter = repository.MovementFilter

// Scope selecciona qué tipos de movimiento entran al historial.
type Scope int

const (
	ScopeCombined Scope = iota
	ScopeDispatches
	ScopeReceipts
)

func (s Scope) kinds() []entity.MovementKind {
	switch s {
	case ScopeDispatches:
		return []entity.MovementKind{entity.KindDispatch}
	case ScopeReceipts:
		return []entity.MovementKind{entity.KindReceipt}
	default:
		return entity.MovementKinds
	}
}

// ScopeFor devuelve el Scope de un solo tipo.
func ScopeFor(kind entity.MovementKind) Scope {
	if kind == entity.KindReceipt {
		return ScopeReceipts
	}
	return ScopeDispatches
}

// Query parámetros de una consulta. Page es 1-based.
type Query struct {
	UserID  int64
	Filter  Filter
	Page    int
	PerPage int
	Scope   Scope
}

// Feed página del historial. Total cuenta los registros filtrados antes de paginar.
type Feed struct {
	Entries     []entity.HistoryEntry
	Total       int
	Pages       int
	CurrentPage int
	PerPage     int
}

// Option configura el Engine.
type Option func(*Engine)

// WithStoragePagination delega la paginación a la base de datos en consultas de un solo tipo.
// El resultado es idéntico al de paginar en memoria.
func WithStoragePagination() Option {
	return func(e *Engine) { e.storagePagination = true }
}

// Engine ejecuta consultas de historial sobre un MovementFinder.
type Engine struct {
	finder            repository.MovementFinder
	storagePagination bool
}

// NewEngine construye el motor de historial.
func NewEngine(finder repository.MovementFinder, opts ...Option) *Engine {
	e := &Engine{finder: finder}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query devuelve la página solicitada del historial de q.UserID.
// Una falla de persistencia se devuelve como *StorageError, sin resultados parciales.
// Una página fuera de rango devuelve Entries vacío, no error.
func (e *Engine) Query(ctx context.Context, q Query) (*Feed, error) {
	page, perPage := normalizePage(q.Page, q.PerPage)
	filter := q.Filter.Normalized()
	kinds := q.Scope.kinds()

	if len(kinds) == 1 && e.storagePagination {
		return e.queryStoragePage(ctx, kinds[0], q.UserID, filter, page, perPage)
	}

	var entries []entity.HistoryEntry
	for _, kind := range kinds {
		list, err := e.finder.FindMovements(ctx, kind, q.UserID, filter)
		if err != nil {
			return nil, &StorageError{Kind: kind, Err: err}
		}
		for _, m := range list {
			entry := entity.NewHistoryEntry(m)
			entry.Kind = kind
			entries = append(entries, entry)
		}
	}
	SortEntries(entries)
	return paginate(entries, page, perPage), nil
}

func (e *Engine) queryStoragePage(ctx context.Context, kind entity.MovementKind, userID int64, filter Filter, page, perPage int) (*Feed, error) {
	total, err := e.finder.CountMovements(ctx, kind, userID, filter)
	if err != nil {
		return nil, &StorageError{Kind: kind, Err: err}
	}
	feed := &Feed{
		Entries:     []entity.HistoryEntry{},
		Total:       total,
		Pages:       pageCount(total, perPage),
		CurrentPage: page,
		PerPage:     perPage,
	}
	if page > feed.Pages {
		return feed, nil
	}
	list, err := e.finder.FindMovementsPage(ctx, kind, userID, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, &StorageError{Kind: kind, Err: err}
	}
	for _, m := range list {
		entry := entity.NewHistoryEntry(m)
		entry.Kind = kind
		feed.Entries = append(feed.Entries, entry)
	}
	return feed, nil
}

// SortEntries ordena por fecha descendente. Empates: despachos antes que recepciones,
// luego ID descendente. El orden no depende del orden en que llegan los registros.
func SortEntries(entries []entity.HistoryEntry) {
	slices.SortStableFunc(entries, compareEntries)
}

func compareEntries(a, b entity.HistoryEntry) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	if a.Kind != b.Kind {
		return cmp.Compare(kindRank(a.Kind), kindRank(b.Kind))
	}
	return cmp.Compare(b.ID, a.ID)
}

func kindRank(k entity.MovementKind) int {
	if i := slices.Index(entity.MovementKinds, k); i >= 0 {
		return i
	}
	return len(entity.MovementKinds)
}

func paginate(entries []entity.HistoryEntry, page, perPage int) *Feed {
	total := len(entries)
	feed := &Feed{
		Entries:     []entity.HistoryEntry{},
		Total:       total,
		Pages:       pageCount(total, perPage),
		CurrentPage: page,
		PerPage:     perPage,
	}
	if page > feed.Pages {
		return feed
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	feed.Entries = append(feed.Entries, entries[start:end]...)
	return feed
}

func pageCount(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return page, perPage
}
