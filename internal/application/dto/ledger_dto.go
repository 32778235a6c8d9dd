package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocationRef identifica la ubicación compuesta (bodega, reserva).
type LocationRef struct {
	WarehouseID   string `json:"warehouse_id"`
	ReservationID string `json:"reservation_id"`
}

// ReceiveRequest body para POST /api/ledger/receipts (ingreso de materiales).
type ReceiveRequest struct {
	Location    LocationRef      `json:"location"`
	ProductCode string           `json:"product_code"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Reference   string           `json:"reference,omitempty"` // OC/OS de origen
	Note        string           `json:"note,omitempty"`
}

// IssueRequest body para POST /api/ledger/issues (salida de materiales).
type IssueRequest struct {
	Location    LocationRef     `json:"location"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Note        string          `json:"note,omitempty"`
}

// TransferLineRequest una línea del traslado.
type TransferLineRequest struct {
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Note        string          `json:"note,omitempty"`
}

// TransferRequest body para POST /api/ledger/transfers (traslado de materiales).
type TransferRequest struct {
	Source LocationRef           `json:"source"`
	Dest   LocationRef           `json:"dest"`
	Lines  []TransferLineRequest `json:"lines"`
	Note   string                `json:"note,omitempty"`
}

// DocumentResponse respuesta de las operaciones que emiten documento.
type DocumentResponse struct {
	DocumentNumber string `json:"document_number"`
}

// BalanceResponse respuesta de GET /api/ledger/balance.
type BalanceResponse struct {
	Location       LocationRef     `json:"location"`
	ProductCode    string          `json:"product_code"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
}

// MovementDTO un registro del kardex en respuestas HTTP.
type MovementDTO struct {
	ID             int64            `json:"id"`
	Location       LocationRef      `json:"location"`
	ProductCode    string           `json:"product_code"`
	Kind           string           `json:"kind"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	DocumentNumber string           `json:"document_number"`
	Note           string           `json:"note,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// KardexResponse respuesta de GET /api/ledger/kardex. NextAfterID permite
// pedir la página siguiente reanudando desde el último movimiento devuelto.
type KardexResponse struct {
	Movements   []MovementDTO `json:"movements"`
	NextAfterID int64         `json:"next_after_id,omitempty"`
}

// RebuildRequest body para POST /api/ledger/balances/rebuild.
type RebuildRequest struct {
	Location    LocationRef `json:"location"`
	ProductCode string      `json:"product_code"`
}

// NextDocumentRequest body para POST /api/documents/next (correlativos para
// los módulos de órdenes: OC, OS).
type NextDocumentRequest struct {
	Prefix string `json:"prefix"`
}
