package movement

import (
	"context"
	"fmt"

	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// ReceiptPDF genera el comprobante PDF del movimiento con su lista de fotos.
// Solo el dueño o un admin.
func (uc *UseCase) ReceiptPDF(ctx context.Context, kind entity.MovementKind, userID int64, role string, id int64) ([]byte, string, error) {
	m, err := uc.authorized(ctx, kind, userID, role, id)
	if err != nil {
		return nil, "", err
	}
	if m.Photos, err = uc.photos.ListByMovement(ctx, kind, m.ID); err != nil {
		return nil, "", err
	}
	owner, err := uc.users.GetByID(ctx, m.UserID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.renderer.RenderReceipt(ctx, m, owner)
	if err != nil {
		return nil, "", fmt.Errorf("generar comprobante: %w", err)
	}
	return pdf, fmt.Sprintf("comprobante_%s_%d.pdf", kind, m.ID), nil
}
