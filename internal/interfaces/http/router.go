package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skunksss/FP-Registrapp/internal/application/admin"
	"github.com/skunksss/FP-Registrapp/internal/application/auth"
	"github.com/skunksss/FP-Registrapp/internal/application/history"
	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	MovementUC *movement.UseCase
	History    *history.Engine
	AdminUC    *admin.AdminUseCase
	JWTSecret  string
	AppName    string
	// LimiterStorage comparte los contadores del rate limit (Redis). nil: memoria del proceso.
	LimiterStorage fiber.Storage
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", RateLimit("login", LoginPerMinute, time.Minute, deps.LimiterStorage), authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	for _, kind := range entity.MovementKinds {
		registerMovementRoutes(protected.Group("/"+kind.Plural()), NewMovementHandler(deps.MovementUC, kind), deps.LimiterStorage)
	}

	historyHandler := NewHistoryHandler(deps.History)
	hist := protected.Group("/historial")
	hist.Get("/", historyHandler.Combined)
	hist.Get("/despachos", historyHandler.Dispatches)
	hist.Get("/recepciones", historyHandler.Receipts)

	// Admin
	adminHandler := NewAdminHandler(deps.AdminUC)
	adm := protected.Group("/admin", RequireRole(entity.RoleAdmin))
	adm.Get("/estadisticas", adminHandler.Stats)
	adm.Get("/despachos", adminHandler.ListDispatches)
	adm.Get("/recepciones", adminHandler.ListReceipts)
	adm.Get("/usuarios/:id/historial", adminHandler.UserHistory)
	adm.Delete("/despachos/fotos/:fotoId", adminHandler.DeleteDispatchPhoto)
	adm.Delete("/recepciones/fotos/:fotoId", adminHandler.DeleteReceiptPhoto)
	adm.Delete("/despachos/:id", adminHandler.DeleteDispatch)
	adm.Delete("/recepciones/:id", adminHandler.DeleteReceipt)
}

func registerMovementRoutes(g fiber.Router, h *MovementHandler, storage fiber.Storage) {
	name := string(h.kind)
	g.Post("/", RateLimit(name+":create", CreatePerMinute, time.Minute, storage), h.Create)
	g.Get("/", h.List)
	g.Delete("/fotos/:fotoId", h.DeletePhoto)
	g.Get("/fotos/:fotoId/descargar", h.DownloadPhoto)
	g.Get("/fotos/:fotoId/ver", h.ViewPhoto)
	g.Get("/:id", h.Get)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Get("/:id/comprobante", h.Receipt)
	g.Post("/:id/fotos", RateLimit(name+":upload", UploadPerMinute, time.Minute, storage), h.UploadPhoto)
}
