package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skunksss/FP-Registrapp/internal/application/admin"
	"github.com/skunksss/FP-Registrapp/internal/application/history"
	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/memory"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/storage/local"
)

type seeded struct {
	uc        *admin.AdminUseCase
	movements *memory.MovementRepo
}

func setup(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepository()
	movements := memory.NewMovementRepository()
	photos := memory.NewPhotoRepository()

	require.NoError(t, users.Create(ctx, &entity.User{RUT: "21001625-2", Role: entity.RoleOperador, Device: "Zebra"}))
	require.NoError(t, users.Create(ctx, &entity.User{RUT: "12345678-5", Role: entity.RoleOperador}))
	require.NoError(t, users.Create(ctx, &entity.User{RUT: "19100681-K", Role: entity.RoleAdmin, Device: "Tablet"}))

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, kind := range []entity.MovementKind{entity.KindDispatch, entity.KindDispatch, entity.KindReceipt} {
		require.NoError(t, movements.Create(ctx, &entity.Movement{
			Kind: kind, GuideNumber: "G", CompanyRUT: "12345678-5", UserID: 1, Date: base.AddDate(0, 0, i),
		}))
	}
	require.NoError(t, movements.Create(ctx, &entity.Movement{
		Kind: entity.KindReceipt, GuideNumber: "H", CompanyRUT: "12345678-5", UserID: 2, Date: base,
	}))

	mov := movement.NewUseCase(movements, photos, users, memory.NewTxRunner(movements, photos), local.New(t.TempDir()), nil)
	uc := admin.NewAdminUseCase(users, movements, history.NewEngine(movements), mov)
	return seeded{uc: uc, movements: movements}
}

func TestStats(t *testing.T) {
	s := setup(t)
	out, err := s.uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalUsuarios)
	assert.Equal(t, 2, out.UsuariosConDispositivo)
	assert.Equal(t, 2, out.TotalDespachos)
	assert.Equal(t, 2, out.TotalRecepciones)
}

func TestListAll_IncluyeTodosLosUsuarios(t *testing.T) {
	s := setup(t)
	out, err := s.uc.ListAll(context.Background(), entity.KindReceipt, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)
	require.Len(t, out.Items, 2)
	assert.Equal(t, int64(1), out.Items[0].UsuarioID)
	assert.Equal(t, int64(2), out.Items[1].UsuarioID)
}

func TestUserHistory(t *testing.T) {
	s := setup(t)
	out, err := s.uc.UserHistory(context.Background(), 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 2, out.Pages)
	require.Len(t, out.Movimientos, 2)
	assert.Equal(t, "recepcion", out.Movimientos[0].Tipo)

	_, err = s.uc.UserHistory(context.Background(), 99, 1, 10)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteMovement_DeCualquierUsuario(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	require.NoError(t, s.uc.DeleteMovement(ctx, 3, entity.KindReceipt, 2))
	m, err := s.movements.GetByID(ctx, entity.KindReceipt, 2)
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.ErrorIs(t, s.uc.DeleteMovement(ctx, 3, entity.KindReceipt, 2), domain.ErrNotFound)
}
