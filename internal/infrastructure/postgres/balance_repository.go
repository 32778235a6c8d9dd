package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable
// con pool o tx). La tabla balances es la proyección materializada del kardex.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo actual de un producto en una ubicación.
func (r *BalanceRepo) Get(loc entity.StockLocation, productCode string) (*entity.Balance, error) {
	query := `
		SELECT warehouse_id, reservation_id, product_code, quantity, updated_at
		FROM balances WHERE warehouse_id = $1 AND reservation_id = $2 AND product_code = $3`
	return r.scanOne(query, loc, productCode)
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE) para
// serializar el leer-luego-escribir de escritores concurrentes sobre la
// misma clave; claves distintas avanzan en paralelo. Si la clave nunca tuvo
// movimientos, primero materializa la fila en cero: un FOR UPDATE sobre una
// fila inexistente no bloquea nada y dos primeros escritores de la misma
// clave correrían sin serializarse.
func (r *BalanceRepo) GetForUpdate(loc entity.StockLocation, productCode string) (*entity.Balance, error) {
	seed := `
		INSERT INTO balances (warehouse_id, reservation_id, product_code, quantity, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (warehouse_id, reservation_id, product_code) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), seed,
		loc.WarehouseID, loc.ReservationID, productCode,
	); err != nil {
		return nil, fmt.Errorf("seed balance: %w", err)
	}
	query := `
		SELECT warehouse_id, reservation_id, product_code, quantity, updated_at
		FROM balances WHERE warehouse_id = $1 AND reservation_id = $2 AND product_code = $3
		FOR UPDATE`
	return r.scanOne(query, loc, productCode)
}

func (r *BalanceRepo) scanOne(query string, loc entity.StockLocation, productCode string) (*entity.Balance, error) {
	var b entity.Balance
	err := r.q.QueryRow(context.Background(), query,
		loc.WarehouseID, loc.ReservationID, productCode,
	).Scan(&b.Location.WarehouseID, &b.Location.ReservationID, &b.ProductCode, &b.Quantity, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Ubicación nunca tocada: saldo cero, no error
			return &entity.Balance{Location: loc, ProductCode: productCode, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// Upsert inserta o actualiza el saldo (por ubicación y producto).
func (r *BalanceRepo) Upsert(balance *entity.Balance) error {
	query := `
		INSERT INTO balances (warehouse_id, reservation_id, product_code, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (warehouse_id, reservation_id, product_code)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		balance.Location.WarehouseID, balance.Location.ReservationID,
		balance.ProductCode, balance.Quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}
