package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-pro/internal/domain"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
// La tabla movements es de solo inserción: no existe UPDATE ni DELETE aquí.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append persiste el movimiento y asigna su ID monótono (BIGSERIAL).
func (r *MovementRepo) Append(m *entity.Movement) error {
	query := `
		INSERT INTO movements (warehouse_id, reservation_id, product_code, kind, quantity, unit_price, document_number, note, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	err := r.q.QueryRow(context.Background(), query,
		m.Location.WarehouseID, m.Location.ReservationID, m.ProductCode,
		m.Kind, m.Quantity, m.UnitPrice, m.DocumentNumber, m.Note,
		m.CreatedAt, createdBy,
	).Scan(&m.ID)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidMovement, err)
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// List devuelve el kardex de una ubicación ordenado por ID ascendente.
// AfterID actúa como cursor: la consulta retoma después del último ID visto.
func (r *MovementRepo) List(filter repository.KardexFilter) ([]*entity.Movement, error) {
	query := `
		SELECT id, warehouse_id, reservation_id, product_code, kind, quantity, unit_price, document_number, note, created_at, created_by
		FROM movements WHERE warehouse_id = $1 AND reservation_id = $2`
	args := []any{filter.Location.WarehouseID, filter.Location.ReservationID}
	pos := 3
	if filter.ProductCode != "" {
		query += fmt.Sprintf(" AND product_code = $%d", pos)
		args = append(args, filter.ProductCode)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	if filter.AfterID > 0 {
		query += fmt.Sprintf(" AND id > $%d", pos)
		args = append(args, filter.AfterID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d", pos)
	args = append(args, filter.Limit)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.Location.WarehouseID, &m.Location.ReservationID,
			&m.ProductCode, &m.Kind, &m.Quantity, &m.UnitPrice, &m.DocumentNumber,
			&m.Note, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByLocationProduct suma con signo todo el historial de (ubicación,
// producto). RECEIPT y TRANSFER_IN suman; ISSUE y TRANSFER_OUT restan.
func (r *MovementRepo) SumByLocationProduct(loc entity.StockLocation, productCode string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE
			WHEN kind IN ('RECEIPT', 'TRANSFER_IN') THEN quantity
			ELSE -quantity
		END), 0)
		FROM movements
		WHERE warehouse_id = $1 AND reservation_id = $2 AND product_code = $3`
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), query,
		loc.WarehouseID, loc.ReservationID, productCode,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
