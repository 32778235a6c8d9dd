package repository

import "github.com/tu-usuario/almacen-pro/internal/domain/entity"

// ReservationRepository define el puerto de consulta de reservas.
type ReservationRepository interface {
	GetByID(id string) (*entity.Reservation, error)
	// ExistsInWarehouse verifica que la reserva exista y pertenezca a la
	// bodega indicada (validación de la ubicación compuesta).
	ExistsInWarehouse(reservationID, warehouseID string) (bool, error)
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.Reservation, error)
}
