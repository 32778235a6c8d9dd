package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex.
const (
	MovementKindRECEIPT     = "RECEIPT"      // ingreso de materiales
	MovementKindISSUE       = "ISSUE"        // salida de materiales
	MovementKindTRANSFEROUT = "TRANSFER_OUT" // traslado: débito en origen
	MovementKindTRANSFERIN  = "TRANSFER_IN"  // traslado: crédito en destino
)

// Movement es un hecho inmutable del kardex. Una vez persistido nunca se
// actualiza ni se elimina; las correcciones se hacen agregando un movimiento
// compensatorio. Quantity es siempre positiva; el signo lo determina Kind.
type Movement struct {
	ID             int64
	Location       StockLocation
	ProductCode    string
	Kind           string
	Quantity       decimal.Decimal
	UnitPrice      *decimal.Decimal // opcional, solo para valorización de reportes
	DocumentNumber string           // correlativo del documento que lo originó
	Note           string
	CreatedAt      time.Time
	CreatedBy      string // UserID
}

// SignedQuantity devuelve la cantidad con signo según el tipo:
// RECEIPT y TRANSFER_IN suman, ISSUE y TRANSFER_OUT restan.
func (m *Movement) SignedQuantity() decimal.Decimal {
	switch m.Kind {
	case MovementKindISSUE, MovementKindTRANSFEROUT:
		return m.Quantity.Neg()
	default:
		return m.Quantity
	}
}

// IsInbound indica si el movimiento incrementa el saldo de su ubicación.
func (m *Movement) IsInbound() bool {
	return m.Kind == MovementKindRECEIPT || m.Kind == MovementKindTRANSFERIN
}
