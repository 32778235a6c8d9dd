package entity

import "time"

// Warehouse representa una bodega física. Las bodegas se administran desde
// datos maestros; el kardex solo las referencia.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
