package movement_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/memory"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/storage/local"
)

const (
	ownerID    int64 = 1
	strangerID int64 = 2
	adminID    int64 = 3
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

type fakeRenderer struct {
	got   *entity.Movement
	owner *entity.User
}

func (f *fakeRenderer) RenderReceipt(_ context.Context, m *entity.Movement, owner *entity.User) ([]byte, error) {
	f.got, f.owner = m, owner
	return []byte("%PDF-1.3 falso"), nil
}

type fixture struct {
	uc       *movement.UseCase
	photos   *memory.PhotoRepo
	store    *local.Store
	renderer *fakeRenderer
}

func newFixture(t *testing.T, opts ...movement.Option) *fixture {
	t.Helper()
	movements := memory.NewMovementRepository()
	photos := memory.NewPhotoRepository()
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(context.Background(), &entity.User{RUT: "21001625-2", Name: "Operador", Role: entity.RoleOperador}))
	store := local.New(t.TempDir())
	renderer := &fakeRenderer{}
	opts = append([]movement.Option{movement.WithClock(func() time.Time {
		return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	})}, opts...)
	uc := movement.NewUseCase(movements, photos, users, memory.NewTxRunner(movements, photos), store, renderer, opts...)
	return &fixture{uc: uc, photos: photos, store: store, renderer: renderer}
}

func (f *fixture) create(t *testing.T, kind entity.MovementKind) *dto.MovementResponse {
	t.Helper()
	lat, lng := -33.4569, -70.6483
	out, err := f.uc.Create(context.Background(), kind, ownerID, dto.CreateMovementRequest{
		NumeroGuia:  " GD-001 ",
		RutEmpresa:  "12.345.678-5",
		Observacion: "Pallets sellados",
		Latitud:     &lat,
		Longitud:    &lng,
	})
	require.NoError(t, err)
	return out
}

func ptr[T any](v T) *T { return &v }

// ─── Create / Get / List ──────────────────────────────────────────────────────

func TestCreate_GuardaRUTCanonico(t *testing.T) {
	f := newFixture(t)
	out := f.create(t, entity.KindDispatch)

	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "despacho", out.Tipo)
	assert.Equal(t, "GD-001", out.NumeroGuia)
	assert.Equal(t, "12345678-5", out.RutEmpresa)
	assert.Equal(t, ownerID, out.UsuarioID)
	require.NotNil(t, out.Latitud)
	assert.InDelta(t, -33.4569, *out.Latitud, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), out.Fecha)
	assert.NotNil(t, out.Fotos)
}

func TestCreate_RUTEmpresaInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), entity.KindReceipt, ownerID, dto.CreateMovementRequest{
		NumeroGuia: "GR-1",
		RutEmpresa: "12345678-6",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields["rut_empresa"], "dígito verificador")
}

func TestCreate_GuiaDemasiadoLarga(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), entity.KindDispatch, ownerID, dto.CreateMovementRequest{
		NumeroGuia: strings.Repeat("9", 51),
		RutEmpresa: "12345678-5",
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "numero_guia")
}

func TestCreate_GuiaEnBlancoRechazada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, guia := range []string{"", "   ", "\t \n"} {
		_, err := f.uc.Create(ctx, entity.KindDispatch, ownerID, dto.CreateMovementRequest{
			NumeroGuia: guia,
			RutEmpresa: "12.345.678-5",
		})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, "guía %q", guia)
		assert.Contains(t, ve.Fields, "numero_guia")
	}

	out, err := f.uc.List(ctx, entity.KindDispatch, ownerID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, out.Items, "no debe guardarse ningún despacho")
}

// El largo máximo se mide sin los espacios de borde.
func TestCreate_GuiaDeCincuentaConEspaciosAceptada(t *testing.T) {
	f := newFixture(t)
	guia := strings.Repeat("7", 50)
	out, err := f.uc.Create(context.Background(), entity.KindReceipt, ownerID, dto.CreateMovementRequest{
		NumeroGuia: "  " + guia + "  ",
		RutEmpresa: "12345678-5",
	})
	require.NoError(t, err)
	assert.Equal(t, guia, out.NumeroGuia)
}

func TestGet_SoloDuenoOAdmin(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)
	ctx := context.Background()

	_, err := f.uc.Get(ctx, entity.KindDispatch, strangerID, entity.RoleOperador, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.uc.Get(ctx, entity.KindDispatch, adminID, entity.RoleAdmin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.uc.Get(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Mismo ID pero otro tipo: tablas separadas.
	_, err = f.uc.Get(ctx, entity.KindReceipt, ownerID, entity.RoleOperador, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_SoloPropios(t *testing.T) {
	f := newFixture(t)
	f.create(t, entity.KindReceipt)
	f.create(t, entity.KindReceipt)
	_, err := f.uc.Create(context.Background(), entity.KindReceipt, strangerID, dto.CreateMovementRequest{NumeroGuia: "X", RutEmpresa: "21001625-2"})
	require.NoError(t, err)

	out, err := f.uc.List(context.Background(), entity.KindReceipt, ownerID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.Page.Total)
	for _, item := range out.Items {
		assert.Equal(t, ownerID, item.UsuarioID)
	}
}

// ─── Update / Delete ──────────────────────────────────────────────────────────

func TestUpdate_Parcial(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)

	out, err := f.uc.Update(context.Background(), entity.KindDispatch, ownerID, entity.RoleOperador, created.ID, dto.UpdateMovementRequest{
		RutEmpresa: ptr("19.100.681-k"),
	})
	require.NoError(t, err)
	assert.Equal(t, "19100681-K", out.RutEmpresa)
	assert.Equal(t, "GD-001", out.NumeroGuia)
	assert.Equal(t, "Pallets sellados", out.Observacion)
}

func TestUpdate_RUTInvalidoNoModifica(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)
	ctx := context.Background()

	_, err := f.uc.Update(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID, dto.UpdateMovementRequest{
		RutEmpresa: ptr("12345678-6"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.uc.Get(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "12345678-5", got.RutEmpresa)
}

func TestUpdate_OtroUsuarioProhibido(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)

	_, err := f.uc.Update(context.Background(), entity.KindDispatch, strangerID, entity.RoleOperador, created.ID, dto.UpdateMovementRequest{NumeroGuia: ptr("X")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_GuiaEnBlancoNoModifica(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)
	ctx := context.Background()

	for _, guia := range []string{"", "  "} {
		_, err := f.uc.Update(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID, dto.UpdateMovementRequest{
			NumeroGuia: ptr(guia),
		})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, "guía %q", guia)
		assert.Contains(t, ve.Fields, "numero_guia")
	}

	got, err := f.uc.Get(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "GD-001", got.NumeroGuia)

	out, err := f.uc.Update(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID, dto.UpdateMovementRequest{
		NumeroGuia: ptr(" GD-002 "),
	})
	require.NoError(t, err)
	assert.Equal(t, "GD-002", out.NumeroGuia)
}

func TestDelete_EliminaFotosYArchivos(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)
	ctx := context.Background()

	photo, err := f.uc.UploadPhoto(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID, "carga", "foto.png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	stored, err := f.photos.GetByID(ctx, entity.KindDispatch, photo.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	require.NoError(t, f.uc.Delete(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID))

	_, err = f.uc.Get(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	gone, err := f.photos.GetByID(ctx, entity.KindDispatch, photo.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	_, err = f.store.Open(ctx, stored.StorageKey)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestDelete_AdminPuedeEliminarAjeno(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindReceipt)

	err := f.uc.Delete(context.Background(), entity.KindReceipt, strangerID, entity.RoleOperador, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.NoError(t, f.uc.Delete(context.Background(), entity.KindReceipt, adminID, entity.RoleAdmin, created.ID))
}

// ─── Fotos ────────────────────────────────────────────────────────────────────

func TestUploadPhoto_ValidacionesDeArchivo(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)
	ctx := context.Background()
	upload := func(category, name string, size int64, content []byte) error {
		_, err := f.uc.UploadPhoto(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID, category, name, size, bytes.NewReader(content))
		return err
	}

	err := upload("selfie", "a.png", 10, pngHeader)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "tipo")

	assert.ErrorIs(t, upload("carnet", "a.gif", 10, pngHeader), domain.ErrUnsupportedMedia)
	assert.ErrorIs(t, upload("carnet", "a.png", 10, []byte("no soy una imagen")), domain.ErrUnsupportedMedia)
	assert.ErrorIs(t, upload("carnet", "a.png", movement.DefaultMaxPhotoBytes+1, pngHeader), domain.ErrFileTooLarge)

	assert.NoError(t, upload("carnet", "A.JPG", int64(len(jpegHeader)), jpegHeader))
	assert.NoError(t, upload("Patente", "b.jpeg", int64(len(jpegHeader)), jpegHeader))
}

func TestUploadPhoto_TamañoRealExcedido(t *testing.T) {
	f := newFixture(t, movement.WithMaxPhotoBytes(64))
	created := f.create(t, entity.KindDispatch)
	content := append(append([]byte{}, pngHeader...), make([]byte, 200)...)

	// El tamaño declarado miente; el límite se aplica al copiar.
	_, err := f.uc.UploadPhoto(context.Background(), entity.KindDispatch, ownerID, entity.RoleOperador, created.ID, "carga", "x.png", 10, bytes.NewReader(content))
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	list, err := f.photos.ListByMovement(context.Background(), entity.KindDispatch, created.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUploadPhoto_MovimientoAjeno(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)

	_, err := f.uc.UploadPhoto(context.Background(), entity.KindDispatch, strangerID, entity.RoleOperador, created.ID, "carga", "x.png", 10, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOpenPhoto_YDeletePhoto(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindReceipt)
	ctx := context.Background()

	photo, err := f.uc.UploadPhoto(ctx, entity.KindReceipt, ownerID, entity.RoleOperador, created.ID, "patente", "p.jpg", int64(len(jpegHeader)), bytes.NewReader(jpegHeader))
	require.NoError(t, err)
	assert.Equal(t, "patente", photo.Tipo)

	file, err := f.uc.OpenPhoto(ctx, entity.KindReceipt, ownerID, entity.RoleOperador, photo.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(file.Content)
	require.NoError(t, file.Content.Close())
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, data)
	assert.Equal(t, "image/jpeg", file.ContentType)
	assert.Equal(t, "recepcion_1_patente.jpg", file.Filename)

	_, err = f.uc.OpenPhoto(ctx, entity.KindReceipt, strangerID, entity.RoleOperador, photo.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.uc.DeletePhoto(ctx, entity.KindReceipt, ownerID, entity.RoleOperador, photo.ID))
	_, err = f.uc.OpenPhoto(ctx, entity.KindReceipt, ownerID, entity.RoleOperador, photo.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Comprobante ──────────────────────────────────────────────────────────────

func TestReceiptPDF_IncluyeFotosYDueno(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindDispatch)
	ctx := context.Background()
	_, err := f.uc.UploadPhoto(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID, "carga", "c.png", 10, bytes.NewReader(pngHeader))
	require.NoError(t, err)

	pdf, name, err := f.uc.ReceiptPDF(ctx, entity.KindDispatch, ownerID, entity.RoleOperador, created.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "comprobante_despacho_1.pdf", name)
	require.NotNil(t, f.renderer.got)
	assert.Len(t, f.renderer.got.Photos, 1)
	require.NotNil(t, f.renderer.owner)
	assert.Equal(t, "21001625-2", f.renderer.owner.RUT)

	_, _, err = f.uc.ReceiptPDF(ctx, entity.KindDispatch, strangerID, entity.RoleOperador, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
