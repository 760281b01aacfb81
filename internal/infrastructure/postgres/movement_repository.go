package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, numero_guia, rut_empresa, usuario_id, fecha, COALESCE(observacion, ''), latitud, longitud`

// MovementRepo despachos y recepciones sobre PostgreSQL (usable con pool o tx).
// Cada tipo vive en su propia tabla con el mismo esquema.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste el movimiento y completa ID y fecha.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	t, err := tablesFor(m.Kind)
	if err != nil {
		return err
	}
	if m.Date.IsZero() {
		m.Date = time.Now().UTC()
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (numero_guia, rut_empresa, usuario_id, fecha, observacion, latitud, longitud)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING id`, t.movement)
	err = r.q.QueryRow(ctx, query,
		m.GuideNumber, m.CompanyRUT, m.UserID, m.Date, m.Note, m.Latitude, m.Longitude,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert %s: %w", t.movement, err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, kind entity.MovementKind, id int64) (*entity.Movement, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, movementColumns, t.movement)
	m, err := scanMovement(r.q.QueryRow(ctx, query, id), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", t.movement, err)
	}
	return m, nil
}

// Update reemplaza guía, RUT, observación y coordenadas.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	t, err := tablesFor(m.Kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE %s SET numero_guia = $1, rut_empresa = $2, observacion = NULLIF($3, ''), latitud = $4, longitud = $5
		WHERE id = $6`, t.movement)
	tag, err := r.q.Exec(ctx, query, m.GuideNumber, m.CompanyRUT, m.Note, m.Latitude, m.Longitude, m.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.movement, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el movimiento; las filas de fotos caen por ON DELETE CASCADE.
func (r *MovementRepo) Delete(ctx context.Context, kind entity.MovementKind, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.movement), id); err != nil {
		return fmt.Errorf("delete %s: %w", t.movement, err)
	}
	return nil
}

// ListByUser lista los movimientos de userID, más recientes primero.
func (r *MovementRepo) ListByUser(ctx context.Context, kind entity.MovementKind, userID int64, limit, offset int) ([]*entity.Movement, error) {
	return r.FindMovementsPage(ctx, kind, userID, repository.MovementFilter{}, limit, offset)
}

// ListAll lista los movimientos de todos los usuarios (auditoría).
func (r *MovementRepo) ListAll(ctx context.Context, kind entity.MovementKind, limit, offset int) ([]*entity.Movement, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY fecha DESC, id DESC`, movementColumns, t.movement)
	query, args := appendPage(query, nil, limit, offset)
	return r.list(ctx, kind, query, args...)
}

// CountAll cuenta los movimientos de todos los usuarios.
func (r *MovementRepo) CountAll(ctx context.Context, kind entity.MovementKind) (int, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t.movement)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.movement, err)
	}
	return n, nil
}

// FindMovements devuelve los movimientos de ownerID que cumplen f.
func (r *MovementRepo) FindMovements(ctx context.Context, kind entity.MovementKind, ownerID int64, f repository.MovementFilter) ([]*entity.Movement, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	where, args := filterClause(ownerID, f)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, movementColumns, t.movement, where)
	return r.list(ctx, kind, query, args...)
}

// CountMovements cuenta los movimientos de ownerID que cumplen f.
func (r *MovementRepo) CountMovements(ctx context.Context, kind entity.MovementKind, ownerID int64, f repository.MovementFilter) (int, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	where, args := filterClause(ownerID, f)
	var n int
	if err := r.q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, t.movement, where), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.movement, err)
	}
	return n, nil
}

// FindMovementsPage igual que FindMovements, ordenado por fecha desc, id desc y paginado en SQL.
func (r *MovementRepo) FindMovementsPage(ctx context.Context, kind entity.MovementKind, ownerID int64, f repository.MovementFilter, limit, offset int) ([]*entity.Movement, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	where, args := filterClause(ownerID, f)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY fecha DESC, id DESC`, movementColumns, t.movement, where)
	query, args = appendPage(query, args, limit, offset)
	return r.list(ctx, kind, query, args...)
}

// filterClause arma el WHERE del historial. Textos: ILIKE '%valor%' con comodines escapados.
// Fechas: fecha >= inicio del día desde, fecha < inicio del día siguiente a hasta.
func filterClause(ownerID int64, f repository.MovementFilter) (string, []any) {
	f = f.Normalized()
	conds := []string{"usuario_id = $1"}
	args := []any{ownerID}
	pos := 2
	if f.CompanyRUT != "" {
		conds = append(conds, fmt.Sprintf(`rut_empresa ILIKE $%d ESCAPE '\'`, pos))
		args = append(args, "%"+escapeLike(f.CompanyRUT)+"%")
		pos++
	}
	if f.GuideNumber != "" {
		conds = append(conds, fmt.Sprintf(`numero_guia ILIKE $%d ESCAPE '\'`, pos))
		args = append(args, "%"+escapeLike(f.GuideNumber)+"%")
		pos++
	}
	if lower := f.Lower(); lower != nil {
		conds = append(conds, fmt.Sprintf("fecha >= $%d", pos))
		args = append(args, *lower)
		pos++
	}
	if upper := f.UpperExclusive(); upper != nil {
		conds = append(conds, fmt.Sprintf("fecha < $%d", pos))
		args = append(args, *upper)
	}
	return strings.Join(conds, " AND "), args
}

// appendPage agrega LIMIT/OFFSET; limit <= 0 no limita.
func appendPage(query string, args []any, limit, offset int) (string, []any) {
	if offset < 0 {
		offset = 0
	}
	pos := len(args) + 1
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, limit)
		pos++
	}
	query += fmt.Sprintf(" OFFSET $%d", pos)
	return query, append(args, offset)
}

func (r *MovementRepo) list(ctx context.Context, kind entity.MovementKind, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Plural(), err)
	}
	defer rows.Close()
	list := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row, kind entity.MovementKind) (*entity.Movement, error) {
	m := entity.Movement{Kind: kind}
	if err := row.Scan(&m.ID, &m.GuideNumber, &m.CompanyRUT, &m.UserID, &m.Date, &m.Note, &m.Latitude, &m.Longitude); err != nil {
		return nil, err
	}
	m.Date = m.Date.UTC()
	return &m, nil
}
