package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestLogger registra cada petición con usuario, IP, método, ruta, status y latencia.
// Los 5xx salen en nivel error y los 4xx en warn.
func RequestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		var evt *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			evt = logger.Error()
		case status >= fiber.StatusBadRequest:
			evt = logger.Warn()
		default:
			evt = logger.Info()
		}
		evt.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.IP()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent))
		if uid := GetUserID(c); uid != 0 {
			evt.Int64("user_id", uid)
		}
		evt.Msg("request")
		return nil
	}
}
