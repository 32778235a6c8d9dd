package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
)

// KardexFilter filtra el historial de movimientos de una ubicación.
// AfterID permite retomar la lectura desde el último ID visto (cursor),
// de modo que el historial se recorre como secuencia ordenada y reanudable.
type KardexFilter struct {
	Location    entity.StockLocation
	ProductCode string // vacío = todos los productos de la ubicación
	From        *time.Time
	To          *time.Time
	AfterID     int64
	Limit       int
}

// MovementRepository define el puerto del kardex (solo lectura + append).
// No existe Update ni Delete: el kardex es inmutable una vez escrito.
type MovementRepository interface {
	// Append persiste el movimiento y asigna movement.ID (monótono creciente).
	Append(movement *entity.Movement) error
	// List devuelve movimientos ordenados por ID ascendente según el filtro.
	List(filter KardexFilter) ([]*entity.Movement, error)
	// SumByLocationProduct suma las cantidades con signo de todo el historial
	// de (ubicación, producto). Es la autoridad para reconstruir saldos.
	SumByLocationProduct(location entity.StockLocation, productCode string) (decimal.Decimal, error)
}
