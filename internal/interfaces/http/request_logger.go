package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tu-usuario/almacen-pro/pkg/logger"
)

// HeaderRequestID header de correlación de peticiones.
const HeaderRequestID = "X-Request-ID"

// RequestLogger asigna un request ID (si el cliente no manda uno) y registra
// cada petición con método, ruta, estado y duración. El ID vuelve en la
// respuesta para correlacionar reclamos de los módulos consumidores con los
// logs del motor de stock.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		start := time.Now()
		err := c.Next()

		reqLog := log.WithRequest(requestID)
		ev := reqLog.Info()
		if err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError {
			ev = reqLog.Error()
		}
		ev.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("petición atendida")
		return err
	}
}
