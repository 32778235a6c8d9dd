package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance representa el saldo actual de un producto en una ubicación
// (proyección materializada del kardex). Invariante: Quantity es igual a la
// suma con signo de todos los movimientos de esa ubicación y producto, y
// nunca es negativa. Siempre puede reconstruirse desde el kardex.
type Balance struct {
	Location    StockLocation
	ProductCode string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
