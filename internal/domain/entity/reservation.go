package entity

import "time"

// Reservation es un compartimiento de reserva que subdivide el stock de una
// bodega. Una bodega puede tener varias reservas independientes (por obra,
// por proyecto, etc.); cada una lleva su propio saldo por producto.
type Reservation struct {
	ID          string
	WarehouseID string
	Name        string
	CreatedAt   time.Time
}
