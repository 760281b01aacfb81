package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
)

var _ repository.PhotoRepository = (*PhotoRepo)(nil)

// PhotoRepo fotos en memoria, con IDs independientes por tipo de movimiento.
type PhotoRepo struct {
	mu     sync.RWMutex
	nextID map[entity.MovementKind]int64
	rows   map[entity.MovementKind]map[int64]*entity.Photo
}

// NewPhotoRepository construye un repositorio vacío.
func NewPhotoRepository() *PhotoRepo {
	return &PhotoRepo{
		nextID: make(map[entity.MovementKind]int64),
		rows:   make(map[entity.MovementKind]map[int64]*entity.Photo),
	}
}

func (r *PhotoRepo) Create(ctx context.Context, p *entity.Photo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID[p.Kind]++
	p.ID = r.nextID[p.Kind]
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}
	if r.rows[p.Kind] == nil {
		r.rows[p.Kind] = make(map[int64]*entity.Photo)
	}
	c := *p
	r.rows[p.Kind][p.ID] = &c
	return nil
}

func (r *PhotoRepo) GetByID(ctx context.Context, kind entity.MovementKind, id int64) (*entity.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[kind][id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *PhotoRepo) ListByMovement(ctx context.Context, kind entity.MovementKind, movementID int64) ([]*entity.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*entity.Photo
	for _, p := range r.rows[kind] {
		if p.MovementID == movementID {
			c := *p
			list = append(list, &c)
		}
	}
	slices.SortFunc(list, func(a, b *entity.Photo) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}

func (r *PhotoRepo) Delete(ctx context.Context, kind entity.MovementKind, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows[kind], id)
	return nil
}
