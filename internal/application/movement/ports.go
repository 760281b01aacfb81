package movement

import (
	"context"
	"io"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repos atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movements repository.MovementRepository,
		photos repository.PhotoRepository,
	) error) error
}

// PhotoStore guarda los bytes de las fotos. La clave devuelta por Save es la que se persiste.
type PhotoStore interface {
	Save(ctx context.Context, kind entity.MovementKind, movementID int64, category, ext string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ReceiptRenderer genera el comprobante PDF de un movimiento.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, m *entity.Movement, owner *entity.User) ([]byte, error)
}
