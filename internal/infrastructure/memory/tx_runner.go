package memory

import (
	"context"
	"sync"

	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
)

var _ movement.TxRunner = (*TxRunner)(nil)

// TxRunner serializa los callbacks sobre los repositorios en memoria. No hay rollback:
// un fn que falla a mitad deja aplicados los pasos previos.
type TxRunner struct {
	mu        sync.Mutex
	movements repository.MovementRepository
	photos    repository.PhotoRepository
}

// NewTxRunner construye el runner sobre los repos dados.
func NewTxRunner(movements repository.MovementRepository, photos repository.PhotoRepository) *TxRunner {
	return &TxRunner{movements: movements, photos: photos}
}

// Run ejecuta fn con los repos en memoria.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movements repository.MovementRepository,
	photos repository.PhotoRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.movements, r.photos)
}
