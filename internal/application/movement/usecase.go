// Package movement contiene los casos de uso de despachos y recepciones: alta, edición,
// baja, fotos y comprobante. Cada operación recibe el tipo de movimiento.
package movement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/application/validation"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
	"github.com/skunksss/FP-Registrapp/pkg/rut"
)

// DefaultMaxPhotoBytes tamaño máximo de una foto (2 MiB).
const DefaultMaxPhotoBytes int64 = 2 << 20

// UseCase casos de uso de movimientos.
type UseCase struct {
	movements     repository.MovementRepository
	photos        repository.PhotoRepository
	users         repository.UserRepository
	tx            TxRunner
	store         PhotoStore
	renderer      ReceiptRenderer
	maxPhotoBytes int64
	now           func() time.Time
}

// Option configura el UseCase.
type Option func(*UseCase)

// WithMaxPhotoBytes cambia el tamaño máximo de foto.
func WithMaxPhotoBytes(n int64) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.maxPhotoBytes = n
		}
	}
}

// WithClock fija el reloj usado para la fecha de los movimientos (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

// NewUseCase construye el caso de uso inyectando sus dependencias.
func NewUseCase(
	movements repository.MovementRepository,
	photos repository.PhotoRepository,
	users repository.UserRepository,
	tx TxRunner,
	store PhotoStore,
	renderer ReceiptRenderer,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		movements:     movements,
		photos:        photos,
		users:         users,
		tx:            tx,
		store:         store,
		renderer:      renderer,
		maxPhotoBytes: DefaultMaxPhotoBytes,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Create registra un movimiento del usuario. El RUT de empresa se guarda en forma canónica.
func (uc *UseCase) Create(ctx context.Context, kind entity.MovementKind, userID int64, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, kind)
	}
	// Los largos se validan sobre el texto sin espacios de borde: "   " no es una guía.
	in.NumeroGuia = strings.TrimSpace(in.NumeroGuia)
	in.Observacion = strings.TrimSpace(in.Observacion)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	company, err := rut.Validate(in.RutEmpresa)
	if err != nil {
		return nil, domain.NewValidationError("rut_empresa", validation.RUTMessage(in.RutEmpresa))
	}
	m := &entity.Movement{
		Kind:        kind,
		GuideNumber: in.NumeroGuia,
		CompanyRUT:  company.String(),
		UserID:      userID,
		Date:        uc.now(),
		Note:        in.Observacion,
		Latitude:    toNullDecimal(in.Latitud),
		Longitude:   toNullDecimal(in.Longitud),
	}
	if err := uc.movements.Create(ctx, m); err != nil {
		return nil, err
	}
	return ToMovementResponse(m), nil
}

// List lista los movimientos propios del usuario, más recientes primero.
func (uc *UseCase) List(ctx context.Context, kind entity.MovementKind, userID int64, limit, offset int) (*dto.MovementListResponse, error) {
	list, err := uc.movements.ListByUser(ctx, kind, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.movements.CountMovements(ctx, kind, userID, repository.MovementFilter{})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Get devuelve el movimiento con sus fotos. Solo el dueño o un admin.
func (uc *UseCase) Get(ctx context.Context, kind entity.MovementKind, userID int64, role string, id int64) (*dto.MovementResponse, error) {
	m, err := uc.authorized(ctx, kind, userID, role, id)
	if err != nil {
		return nil, err
	}
	if m.Photos, err = uc.photos.ListByMovement(ctx, kind, m.ID); err != nil {
		return nil, err
	}
	return ToMovementResponse(m), nil
}

// Update edita guía, RUT, observación y coordenadas. Solo el dueño o un admin.
func (uc *UseCase) Update(ctx context.Context, kind entity.MovementKind, userID int64, role string, id int64, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	in.NumeroGuia = trimmed(in.NumeroGuia)
	in.Observacion = trimmed(in.Observacion)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.NumeroGuia != nil && *in.NumeroGuia == "" {
		return nil, domain.NewValidationError("numero_guia", "es obligatorio")
	}
	m, err := uc.authorized(ctx, kind, userID, role, id)
	if err != nil {
		return nil, err
	}
	if in.NumeroGuia != nil {
		m.GuideNumber = *in.NumeroGuia
	}
	if in.RutEmpresa != nil {
		company, err := rut.Validate(*in.RutEmpresa)
		if err != nil {
			return nil, domain.NewValidationError("rut_empresa", validation.RUTMessage(*in.RutEmpresa))
		}
		m.CompanyRUT = company.String()
	}
	if in.Observacion != nil {
		m.Note = *in.Observacion
	}
	if in.Latitud != nil {
		m.Latitude = toNullDecimal(in.Latitud)
	}
	if in.Longitud != nil {
		m.Longitude = toNullDecimal(in.Longitud)
	}
	if err := uc.movements.Update(ctx, m); err != nil {
		return nil, err
	}
	if m.Photos, err = uc.photos.ListByMovement(ctx, kind, m.ID); err != nil {
		return nil, err
	}
	return ToMovementResponse(m), nil
}

// Delete elimina el movimiento, sus filas de fotos y los archivos. Solo el dueño o un admin.
// Los archivos se borran después del commit; una falla ahí se registra y no revierte la baja.
func (uc *UseCase) Delete(ctx context.Context, kind entity.MovementKind, userID int64, role string, id int64) error {
	if _, err := uc.authorized(ctx, kind, userID, role, id); err != nil {
		return err
	}
	var keys []string
	err := uc.tx.Run(ctx, func(movements repository.MovementRepository, photos repository.PhotoRepository) error {
		list, err := photos.ListByMovement(ctx, kind, id)
		if err != nil {
			return err
		}
		for _, p := range list {
			if err := photos.Delete(ctx, kind, p.ID); err != nil {
				return err
			}
			keys = append(keys, p.StorageKey)
		}
		return movements.Delete(ctx, kind, id)
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := uc.store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("tipo", string(kind)).Int64("id", id).Str("archivo", key).
				Msg("no se pudo borrar el archivo de la foto")
		}
	}
	return nil
}

// authorized carga el movimiento y verifica que userID sea dueño o admin.
func (uc *UseCase) authorized(ctx context.Context, kind entity.MovementKind, userID int64, role string, id int64) (*entity.Movement, error) {
	if !kind.Valid() {
		return nil, domain.ErrNotFound
	}
	m, err := uc.movements.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if !m.OwnedBy(userID) && role != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func toNullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*f).Round(6))
}

func toFloatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

// ToMovementResponse convierte el movimiento al formato de la API; Fotos nunca es nil.
func ToMovementResponse(m *entity.Movement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	photos := make([]dto.PhotoResponse, 0, len(m.Photos))
	for _, p := range m.Photos {
		photos = append(photos, toPhotoResponse(p))
	}
	return &dto.MovementResponse{
		ID:          m.ID,
		Tipo:        string(m.Kind),
		NumeroGuia:  m.GuideNumber,
		RutEmpresa:  m.CompanyRUT,
		UsuarioID:   m.UserID,
		Fecha:       m.Date,
		Observacion: m.Note,
		Latitud:     toFloatPtr(m.Latitude),
		Longitud:    toFloatPtr(m.Longitude),
		Fotos:       photos,
	}
}

func toPhotoResponse(p *entity.Photo) dto.PhotoResponse {
	return dto.PhotoResponse{ID: p.ID, Tipo: p.Category, FechaSubida: p.UploadedAt}
}
