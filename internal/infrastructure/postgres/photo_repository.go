package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
)

var _ repository.PhotoRepository = (*PhotoRepo)(nil)

// PhotoRepo filas foto_despacho / foto_recepcion. Los bytes viven en el PhotoStore.
type PhotoRepo struct {
	q Querier
}

// NewPhotoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPhotoRepository(q Querier) *PhotoRepo {
	return &PhotoRepo{q: q}
}

// Create persiste la foto y completa ID y fecha de subida.
func (r *PhotoRepo) Create(ctx context.Context, p *entity.Photo) error {
	t, err := tablesFor(p.Kind)
	if err != nil {
		return err
	}
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, tipo, ruta_archivo, fecha_subida)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, t.photo, t.photoFK)
	if err := r.q.QueryRow(ctx, query, p.MovementID, p.Category, p.StorageKey, p.UploadedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert %s: %w", t.photo, err)
	}
	return nil
}

// GetByID obtiene una foto; (nil, nil) si no existe.
func (r *PhotoRepo) GetByID(ctx context.Context, kind entity.MovementKind, id int64) (*entity.Photo, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, %s, tipo, ruta_archivo, fecha_subida FROM %s WHERE id = $1`, t.photoFK, t.photo)
	p := entity.Photo{Kind: kind}
	err = r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.MovementID, &p.Category, &p.StorageKey, &p.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", t.photo, err)
	}
	return &p, nil
}

// ListByMovement fotos de un movimiento en orden de subida.
func (r *PhotoRepo) ListByMovement(ctx context.Context, kind entity.MovementKind, movementID int64) ([]*entity.Photo, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, %s, tipo, ruta_archivo, fecha_subida FROM %s
		WHERE %s = $1 ORDER BY id`, t.photoFK, t.photo, t.photoFK)
	rows, err := r.q.Query(ctx, query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.photo, err)
	}
	defer rows.Close()
	list := []*entity.Photo{}
	for rows.Next() {
		p := entity.Photo{Kind: kind}
		if err := rows.Scan(&p.ID, &p.MovementID, &p.Category, &p.StorageKey, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.photo, err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete elimina la fila de la foto.
func (r *PhotoRepo) Delete(ctx context.Context, kind entity.MovementKind, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.photo), id); err != nil {
		return fmt.Errorf("delete %s: %w", t.photo, err)
	}
	return nil
}
