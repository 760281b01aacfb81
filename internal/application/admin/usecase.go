// Package admin agrupa las operaciones del panel de administración: conteos globales,
// auditoría de movimientos de cualquier usuario y bajas.
package admin

import (
	"context"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/application/history"
	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
)

// AdminUseCase casos de uso de administración. El control de rol se hace en el router.
type AdminUseCase struct {
	users     repository.UserRepository
	movements repository.MovementRepository
	history   *history.Engine
	mov       *movement.UseCase
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(users repository.UserRepository, movements repository.MovementRepository, engine *history.Engine, mov *movement.UseCase) *AdminUseCase {
	return &AdminUseCase{users: users, movements: movements, history: engine, mov: mov}
}

// Stats devuelve total de usuarios, usuarios con dispositivo, despachos y recepciones.
func (uc *AdminUseCase) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var out dto.StatsResponse
	var err error
	if out.TotalUsuarios, err = uc.users.Count(ctx); err != nil {
		return nil, err
	}
	if out.UsuariosConDispositivo, err = uc.users.CountWithDevice(ctx); err != nil {
		return nil, err
	}
	if out.TotalDespachos, err = uc.movements.CountAll(ctx, entity.KindDispatch); err != nil {
		return nil, err
	}
	if out.TotalRecepciones, err = uc.movements.CountAll(ctx, entity.KindReceipt); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll lista movimientos de todos los usuarios, más recientes primero.
func (uc *AdminUseCase) ListAll(ctx context.Context, kind entity.MovementKind, limit, offset int) (*dto.MovementListResponse, error) {
	list, err := uc.movements.ListAll(ctx, kind, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.movements.CountAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *movement.ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// UserHistory historial combinado de un usuario cualquiera.
func (uc *AdminUseCase) UserHistory(ctx context.Context, userID int64, page, perPage int) (*dto.HistoryResponse, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	feed, err := uc.history.Query(ctx, history.Query{
		UserID:  userID,
		Page:    page,
		PerPage: perPage,
		Scope:   history.ScopeCombined,
	})
	if err != nil {
		return nil, err
	}
	return &dto.HistoryResponse{
		Movimientos: history.EntriesResponse(feed.Entries),
		HistoryPage: history.PageResponse(feed),
	}, nil
}

// DeleteMovement elimina cualquier movimiento con sus fotos.
func (uc *AdminUseCase) DeleteMovement(ctx context.Context, adminID int64, kind entity.MovementKind, id int64) error {
	return uc.mov.Delete(ctx, kind, adminID, entity.RoleAdmin, id)
}

// DeletePhoto elimina cualquier foto.
func (uc *AdminUseCase) DeletePhoto(ctx context.Context, adminID int64, kind entity.MovementKind, photoID int64) error {
	return uc.mov.DeletePhoto(ctx, kind, adminID, entity.RoleAdmin, photoID)
}
