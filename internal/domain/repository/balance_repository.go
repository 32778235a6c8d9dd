package repository

import "github.com/tu-usuario/almacen-pro/internal/domain/entity"

// BalanceRepository define el puerto para consultar/actualizar el saldo
// materializado por (ubicación, producto). Usado dentro de transacciones
// para garantizar consistencia con el kardex.
type BalanceRepository interface {
	// Get devuelve el saldo actual; si nunca hubo movimientos devuelve un
	// saldo en cero (no error).
	Get(location entity.StockLocation, productCode string) (*entity.Balance, error)
	// GetForUpdate bloquea la fila de saldo (SELECT FOR UPDATE) para
	// serializar lectores-escritores concurrentes de la misma clave.
	// Materializa la fila en cero si no existe, de modo que el lock se
	// toma incluso en el primer movimiento de la clave. TODO escritor del
	// saldo debe pasar por aquí antes de Upsert; Get es solo para lecturas.
	GetForUpdate(location entity.StockLocation, productCode string) (*entity.Balance, error)
	Upsert(balance *entity.Balance) error
}
