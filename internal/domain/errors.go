package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidMovement     = errors.New("movimiento inválido: la cantidad debe ser mayor que cero")
	ErrUnknownLocation     = errors.New("bodega o reserva no encontrada")
	ErrUnknownProduct      = errors.New("producto no encontrado")
	ErrInvalidTransfer     = errors.New("traslado inválido")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia: la transacción fue abortada, reintentar")
	ErrSequenceExhausted   = errors.New("secuencia de correlativos agotada")
	ErrUnknownPrefix       = errors.New("prefijo de documento no registrado")
)

// InsufficientStockError detalla un rechazo por falta de disponibilidad:
// cuánto se pidió y cuánto había en la ubicación al momento de validar.
type InsufficientStockError struct {
	ProductCode string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente de %s: solicitado %s, disponible %s",
		e.ProductCode, e.Requested.String(), e.Available.String())
}

// Is permite que errors.Is(err, ErrInsufficientStock) funcione con el error tipado.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
