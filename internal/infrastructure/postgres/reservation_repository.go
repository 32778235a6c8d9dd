package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo consulta de solo lectura de reservas.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// GetByID obtiene una reserva por ID.
func (r *ReservationRepo) GetByID(id string) (*entity.Reservation, error) {
	query := `
		SELECT id, warehouse_id, name, created_at
		FROM reservations WHERE id = $1`
	var res entity.Reservation
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&res.ID, &res.WarehouseID, &res.Name, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}

// ExistsInWarehouse verifica que la reserva exista y pertenezca a la bodega.
func (r *ReservationRepo) ExistsInWarehouse(reservationID, warehouseID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1 AND warehouse_id = $2)`,
		reservationID, warehouseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists reservation: %w", err)
	}
	return exists, nil
}

// ListByWarehouse lista las reservas de una bodega con paginación.
func (r *ReservationRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT id, warehouse_id, name, created_at
		FROM reservations WHERE warehouse_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ID, &res.WarehouseID, &res.Name, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}
