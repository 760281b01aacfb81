package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog/log"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
)

// Límites por IP y por minuto.
const (
	LoginPerMinute  = 5
	CreatePerMinute = 20
	UploadPerMinute = 15
)

// RateLimit limita a limit peticiones por ventana y por IP. name separa los contadores de cada
// grupo de rutas; storage nil usa la memoria del proceso (Redis cuando hay varias instancias).
func RateLimit(name string, limit int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return name + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Warn().Str("limiter", name).Str("client_ip", c.IP()).Str("path", c.Path()).Msg("límite de peticiones alcanzado")
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones, intente en un minuto"})
		},
	})
}
