package repository

import (
	"context"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// PhotoRepository define el puerto de persistencia para las fotos de un movimiento.
type PhotoRepository interface {
	Create(ctx context.Context, photo *entity.Photo) error
	GetByID(ctx context.Context, kind entity.MovementKind, id int64) (*entity.Photo, error)
	ListByMovement(ctx context.Context, kind entity.MovementKind, movementID int64) ([]*entity.Photo, error)
	Delete(ctx context.Context, kind entity.MovementKind, id int64) error
}
