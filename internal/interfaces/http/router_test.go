package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skunksss/FP-Registrapp/internal/application/admin"
	"github.com/skunksss/FP-Registrapp/internal/application/auth"
	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/application/history"
	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/memory"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/pdf"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/storage/local"
	apphttp "github.com/skunksss/FP-Registrapp/internal/interfaces/http"
	pkgjwt "github.com/skunksss/FP-Registrapp/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// API completa sobre repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	operadorRUT  = "21001625-2"
	operadorPass = "clave-operador"
)

type testAPI struct {
	app       *fiber.App
	movements *memory.MovementRepo
	operador  string // Authorization header
	otro      string
	admin     string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepository()
	movements := memory.NewMovementRepository()
	photos := memory.NewPhotoRepository()

	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	op, err := authUC.CreateUser(ctx, dto.CreateUserRequest{RUT: operadorRUT, Password: operadorPass, Device: "Zebra TC21"})
	require.NoError(t, err)
	other, err := authUC.CreateUser(ctx, dto.CreateUserRequest{RUT: "12.345.678-5", Password: "otra-clave"})
	require.NoError(t, err)
	adm, err := authUC.CreateUser(ctx, dto.CreateUserRequest{RUT: "19.100.681-K", Password: "clave-admin", Role: entity.RoleAdmin})
	require.NoError(t, err)

	movUC := movement.NewUseCase(movements, photos, users, memory.NewTxRunner(movements, photos),
		local.New(t.TempDir()), pdf.NewReceiptGenerator("Registrapp"))
	engine := history.NewEngine(movements)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(zerolog.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     authUC,
		MovementUC: movUC,
		History:    engine,
		AdminUC:    admin.NewAdminUseCase(users, movements, engine, movUC),
		JWTSecret:  testJWTSecret,
		AppName:    "Registrapp",
	})

	return &testAPI{
		app:       app,
		movements: movements,
		operador:  bearer(t, op.ID, entity.RoleOperador),
		otro:      bearer(t, other.ID, entity.RoleOperador),
		admin:     bearer(t, adm.ID, entity.RoleAdmin),
	}
}

func bearer(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (a *testAPI) do(t *testing.T, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (a *testAPI) seed(t *testing.T, kind entity.MovementKind, userID int64, guide string, day int) {
	t.Helper()
	require.NoError(t, a.movements.Create(context.Background(), &entity.Movement{
		Kind:        kind,
		GuideNumber: guide,
		CompanyRUT:  "76354771-K",
		UserID:      userID,
		Date:        time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC),
	}))
}

// ─── Auth ────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidasDevuelveToken(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{RUT: "21.001.625-2", Password: operadorPass})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.LoginResponse](t, resp)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, operadorRUT, out.User.RUT)

	me := api.do(t, http.MethodGet, "/api/auth/me", "Bearer "+out.Token, nil)
	require.Equal(t, http.StatusOK, me.StatusCode)
	assert.Equal(t, "Zebra TC21", decode[dto.UserResponse](t, me).Device)
}

func TestLogin_PasswordIncorrectaRetorna401(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{RUT: operadorRUT, Password: "equivocada"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_RUTConDigitoIncorrectoRetorna400(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{RUT: "21001625-3", Password: operadorPass})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Fields["rut"], "dígito verificador")
}

func TestLogin_LimiteDeIntentosPorMinuto(t *testing.T) {
	api := newTestAPI(t)
	for i := 0; i < apphttp.LoginPerMinute; i++ {
		resp := api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{RUT: operadorRUT, Password: "equivocada"})
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "intento %d", i+1)
	}
	resp := api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{RUT: operadorRUT, Password: operadorPass})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ─── Movimientos ─────────────────────────────────────────────────────────────

func TestCreateDespacho_RUTInvalidoDevuelveCampoRutEmpresa(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/despachos", api.operador, dto.CreateMovementRequest{
		NumeroGuia: "GD-1", RutEmpresa: "12345678-6",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Equal(t, "RUT inválido: dígito verificador incorrecto", out.Fields["rut_empresa"])
}

func TestCreateRecepcion_SinTokenRetorna401(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/recepciones", "", dto.CreateMovementRequest{NumeroGuia: "R-1", RutEmpresa: "12345678-5"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMovimiento_CicloCompleto(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/api/recepciones", api.operador, dto.CreateMovementRequest{
		NumeroGuia: "R-100", RutEmpresa: "76.354.771-k",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, "recepcion", created.Tipo)
	assert.Equal(t, "76354771-K", created.RutEmpresa)

	path := "/api/recepciones/1"

	resp = api.do(t, http.MethodGet, path, api.otro, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "otro operador no ve el registro")
	resp = api.do(t, http.MethodGet, path, api.admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin ve cualquier registro")

	nota := "sin novedad"
	resp = api.do(t, http.MethodPut, path, api.operador, dto.UpdateMovementRequest{Observacion: &nota})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, nota, decode[dto.MovementResponse](t, resp).Observacion)

	resp = api.do(t, http.MethodGet, "/api/recepciones", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.MovementListResponse](t, resp).Items, 1)

	resp = api.do(t, http.MethodDelete, path, api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = api.do(t, http.MethodGet, path, api.operador, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMovimiento_IDNoNumericoRetorna400(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/despachos/abc", api.operador, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, resp).Fields, "id")
}

func TestComprobante_DevuelvePDF(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/despachos", api.operador, dto.CreateMovementRequest{NumeroGuia: "GD-7", RutEmpresa: "12345678-5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/despachos/1/comprobante", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "comprobante_despacho_1.pdf")
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

// ─── Fotos ───────────────────────────────────────────────────────────────────

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func uploadRequest(t *testing.T, path, auth, tipo, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("tipo", tipo))
	fw, err := w.CreateFormFile("foto", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", auth)
	return req
}

func TestFotos_SubirVerDescargarEliminar(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/despachos", api.operador, dto.CreateMovementRequest{NumeroGuia: "GD-9", RutEmpresa: "12345678-5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := api.app.Test(uploadRequest(t, "/api/despachos/1/fotos", api.operador, "patente", "auto.PNG", pngBytes), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	photo := decode[dto.PhotoResponse](t, resp)
	assert.Equal(t, "patente", photo.Tipo)

	resp = api.do(t, http.MethodGet, "/api/despachos/fotos/1/ver", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "inline"))
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, pngBytes, body)

	resp = api.do(t, http.MethodGet, "/api/despachos/fotos/1/descargar", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment"))
	resp.Body.Close()

	resp = api.do(t, http.MethodGet, "/api/despachos/fotos/1/ver", api.otro, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/api/despachos/fotos/1", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = api.do(t, http.MethodGet, "/api/despachos/fotos/1/ver", api.operador, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFotos_ExtensionNoPermitidaRetorna415(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/recepciones", api.operador, dto.CreateMovementRequest{NumeroGuia: "R-9", RutEmpresa: "12345678-5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := api.app.Test(uploadRequest(t, "/api/recepciones/1/fotos", api.operador, "carga", "doc.gif", []byte("GIF89a")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestFotos_CategoriaInvalidaRetorna400(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/recepciones", api.operador, dto.CreateMovementRequest{NumeroGuia: "R-9", RutEmpresa: "12345678-5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := api.app.Test(uploadRequest(t, "/api/recepciones/1/fotos", api.operador, "selfie", "a.png", pngBytes), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, resp).Fields, "tipo")
}

// ─── Historial ───────────────────────────────────────────────────────────────

func seedScenario(t *testing.T, api *testAPI) {
	t.Helper()
	api.seed(t, entity.KindDispatch, 1, "D-01", 1)
	api.seed(t, entity.KindDispatch, 1, "D-05", 5)
	api.seed(t, entity.KindDispatch, 1, "D-10", 10)
	api.seed(t, entity.KindReceipt, 1, "R-03", 3)
	api.seed(t, entity.KindReceipt, 1, "R-07", 7)
	api.seed(t, entity.KindReceipt, 2, "R-OTRO", 8)
}

func TestHistorial_CombinadoPrimeraPagina(t *testing.T) {
	api := newTestAPI(t)
	seedScenario(t, api)

	resp := api.do(t, http.MethodGet, "/api/historial?page=1&per_page=3", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.HistoryResponse](t, resp)

	require.Len(t, out.Movimientos, 3)
	assert.Equal(t, []string{"D-10", "R-07", "D-05"}, []string{out.Movimientos[0].NumeroGuia, out.Movimientos[1].NumeroGuia, out.Movimientos[2].NumeroGuia})
	assert.Equal(t, "recepcion", out.Movimientos[1].Tipo)
	assert.Equal(t, 5, out.Total)
	assert.Equal(t, 2, out.Pages)
	assert.Equal(t, 1, out.CurrentPage)
}

func TestHistorial_PorTipoUsaSuPropiaClave(t *testing.T) {
	api := newTestAPI(t)
	seedScenario(t, api)

	resp := api.do(t, http.MethodGet, "/api/historial/despachos", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw := decode[map[string]any](t, resp)
	assert.Len(t, raw["despachos"], 3)
	assert.NotContains(t, raw, "movimientos")

	resp = api.do(t, http.MethodGet, "/api/historial/recepciones?numero_guia=r-0", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[dto.ReceiptHistoryResponse](t, resp)
	assert.Equal(t, 2, rec.Total)
}

func TestHistorial_FechaMalFormadaSeIgnora(t *testing.T) {
	api := newTestAPI(t)
	seedScenario(t, api)

	resp := api.do(t, http.MethodGet, "/api/historial?fecha_inicio=2024-13-45&fecha_fin=2024-01-05", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.HistoryResponse](t, resp)
	assert.Equal(t, 3, out.Total, "solo aplica fecha_fin: 01, 03 y 05")
}

func TestHistorial_PerPageTopeCien(t *testing.T) {
	api := newTestAPI(t)
	seedScenario(t, api)

	resp := api.do(t, http.MethodGet, "/api/historial?per_page=1000", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.HistoryResponse](t, resp)
	assert.Equal(t, apphttp.MaxPerPage, out.PerPage)
	assert.Len(t, out.Movimientos, 5)
}

func TestHistorial_PaginaNoNumericaConservaPerPage(t *testing.T) {
	api := newTestAPI(t)
	seedScenario(t, api)

	resp := api.do(t, http.MethodGet, "/api/historial?page=abc&per_page=2", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.HistoryResponse](t, resp)
	assert.Equal(t, 1, out.CurrentPage)
	assert.Equal(t, 2, out.PerPage)
	assert.Len(t, out.Movimientos, 2)

	resp = api.do(t, http.MethodGet, "/api/historial?page=2&per_page=xyz&numero_guia=D-", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decode[dto.HistoryResponse](t, resp)
	assert.Equal(t, 2, out.CurrentPage)
	assert.Equal(t, 3, out.Total, "el filtro se mantiene aunque per_page sea inválido")
}

func TestHistorial_PaginaFueraDeRangoVacia(t *testing.T) {
	api := newTestAPI(t)
	seedScenario(t, api)

	resp := api.do(t, http.MethodGet, "/api/historial?page=9&per_page=3", api.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw := decode[map[string]any](t, resp)
	assert.Equal(t, []any{}, raw["movimientos"])
	assert.EqualValues(t, 5, raw["total"])
}

// ─── Admin ───────────────────────────────────────────────────────────────────

func TestAdmin_OperadorNoAccede(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/admin/estadisticas", api.operador, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdmin_EstadisticasEHistorialDeUsuario(t *testing.T) {
	api := newTestAPI(t)
	seedScenario(t, api)

	resp := api.do(t, http.MethodGet, "/api/admin/estadisticas", api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[dto.StatsResponse](t, resp)
	assert.Equal(t, 3, stats.TotalUsuarios)
	assert.Equal(t, 1, stats.UsuariosConDispositivo)
	assert.Equal(t, 3, stats.TotalDespachos)
	assert.Equal(t, 3, stats.TotalRecepciones)

	resp = api.do(t, http.MethodGet, "/api/admin/usuarios/1/historial?per_page=2", api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hist := decode[dto.HistoryResponse](t, resp)
	assert.Equal(t, 5, hist.Total)
	assert.Len(t, hist.Movimientos, 2)

	resp = api.do(t, http.MethodGet, "/api/admin/usuarios/99/historial", api.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdmin_ListaYEliminaDeCualquierUsuario(t *testing.T) {
	api := newTestAPI(t)
	seedScenario(t, api)

	resp := api.do(t, http.MethodGet, "/api/admin/recepciones", api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.MovementListResponse](t, resp)
	require.Len(t, list.Items, 3)
	assert.Equal(t, "R-OTRO", list.Items[0].NumeroGuia)

	resp = api.do(t, http.MethodDelete, "/api/admin/recepciones/3", api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/api/admin/recepciones/3", api.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
