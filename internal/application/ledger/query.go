package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

const (
	defaultKardexLimit = 200
	maxKardexLimit     = 1000
)

// Balance devuelve el saldo actual de (ubicación, producto) leyendo la
// proyección materializada. Cero si nunca hubo movimientos.
func (uc *UseCase) Balance(ctx context.Context, loc entity.StockLocation, productCode string) (decimal.Decimal, error) {
	if err := uc.checkLocation(loc); err != nil {
		return decimal.Zero, err
	}
	if err := uc.checkProduct(productCode); err != nil {
		return decimal.Zero, err
	}
	bal, err := uc.balanceRepo.Get(loc, productCode)
	if err != nil {
		return decimal.Zero, err
	}
	return bal.Quantity, nil
}

// Kardex devuelve el historial de movimientos de una ubicación, ordenado por
// ID ascendente. El llamador puede reanudar la lectura pasando AfterID con el
// último ID visto. Alimenta el reporte de kardex y sus exportaciones.
func (uc *UseCase) Kardex(ctx context.Context, filter repository.KardexFilter) ([]*entity.Movement, error) {
	if err := uc.checkLocation(filter.Location); err != nil {
		return nil, err
	}
	if filter.ProductCode != "" {
		if err := uc.checkProduct(filter.ProductCode); err != nil {
			return nil, err
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultKardexLimit
	}
	if filter.Limit > maxKardexLimit {
		filter.Limit = maxKardexLimit
	}
	return uc.movementRepo.List(filter)
}

// Rebuild reconstruye el saldo de (ubicación, producto) sumando todo el
// kardex (SUM con signo) y sobreescribe la proyección con el resultado, en
// una transacción que bloquea la fila de saldo. Es la vía de reparación:
// ante discrepancia entre caché y kardex, manda el kardex.
func (uc *UseCase) Rebuild(ctx context.Context, loc entity.StockLocation, productCode string) (decimal.Decimal, error) {
	if err := uc.checkLocation(loc); err != nil {
		return decimal.Zero, err
	}
	if err := uc.checkProduct(productCode); err != nil {
		return decimal.Zero, err
	}
	var rebuilt decimal.Decimal
	err := uc.runInTx(ctx, func(
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
		_ repository.SequenceRepository,
	) error {
		bal, err := balRepo.GetForUpdate(loc, productCode)
		if err != nil {
			return err
		}
		sum, err := movRepo.SumByLocationProduct(loc, productCode)
		if err != nil {
			return err
		}
		bal.Quantity = sum
		bal.UpdatedAt = uc.now()
		if err := balRepo.Upsert(bal); err != nil {
			return err
		}
		rebuilt = sum
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return rebuilt, nil
}
