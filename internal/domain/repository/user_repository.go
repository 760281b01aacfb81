package repository

import (
	"context"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByRUT(ctx context.Context, rut string) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	CountWithDevice(ctx context.Context) (int, error)
}
