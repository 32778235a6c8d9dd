package dto

// WarehouseDTO bodega en respuestas de solo lectura.
type WarehouseDTO struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// ReservationDTO reserva en respuestas de solo lectura.
type ReservationDTO struct {
	ID          string `json:"id"`
	WarehouseID string `json:"warehouse_id"`
	Name        string `json:"name"`
}

// ProductDTO producto en respuestas de solo lectura.
type ProductDTO struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	UnitMeasure string `json:"unit_measure"`
}
