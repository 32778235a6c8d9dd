package entity

import "fmt"

// StockLocation identifica un compartimiento de stock: una reserva dentro de
// una bodega. Cada par (bodega, reserva) se controla de forma independiente.
// Es un value object: se compara por valor y nunca se muta.
type StockLocation struct {
	WarehouseID   string
	ReservationID string
}

// Key devuelve una clave estable "bodega/reserva", usada para ordenar
// adquisición de bloqueos y como clave de mapas en memoria.
func (l StockLocation) Key() string {
	return fmt.Sprintf("%s/%s", l.WarehouseID, l.ReservationID)
}

// IsZero indica si la ubicación está sin completar.
func (l StockLocation) IsZero() bool {
	return l.WarehouseID == "" || l.ReservationID == ""
}

func (l StockLocation) String() string {
	return l.Key()
}
