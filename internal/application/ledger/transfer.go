package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-pro/internal/domain"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// TransferLine una línea del traslado: producto y cantidad a mover.
type TransferLine struct {
	ProductCode string
	Quantity    decimal.Decimal
	Note        string
}

// TransferInput entrada para un traslado entre ubicaciones (nota de
// traslado NT). Todas las líneas comparten el correlativo.
type TransferInput struct {
	Source  entity.StockLocation
	Dest    entity.StockLocation
	Lines   []TransferLine
	Note    string
	ActorID string
}

// Transfer mueve stock de una ubicación a otra como unidad atómica: valida
// la disponibilidad de TODAS las líneas antes de escribir cualquiera, luego
// agrega el par TRANSFER_OUT/TRANSFER_IN por línea con el mismo correlativo
// y timestamp, y actualiza ambos saldos. Si algo falla después de validar,
// la transacción completa se revierte: nunca queda un débito sin su crédito.
func (uc *UseCase) Transfer(ctx context.Context, in TransferInput) (string, error) {
	if in.Source == in.Dest {
		return "", fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidTransfer)
	}
	if len(in.Lines) == 0 {
		return "", fmt.Errorf("%w: sin líneas", domain.ErrInvalidTransfer)
	}
	if err := uc.checkLocation(in.Source); err != nil {
		return "", err
	}
	if err := uc.checkLocation(in.Dest); err != nil {
		return "", err
	}
	// Total solicitado por producto: soporta el mismo producto en varias
	// líneas sin burlar el chequeo de disponibilidad.
	totals := make(map[string]decimal.Decimal)
	for _, line := range in.Lines {
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return "", domain.ErrInvalidMovement
		}
		if err := uc.checkProduct(line.ProductCode); err != nil {
			return "", err
		}
		totals[line.ProductCode] = totals[line.ProductCode].Add(line.Quantity)
	}
	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	// Orden determinista de adquisición de bloqueos para evitar deadlocks
	// entre traslados concurrentes que comparten productos.
	sort.Strings(codes)

	var docNumber string
	err := uc.runInTx(ctx, func(
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
		seqRepo repository.SequenceRepository,
	) error {
		now := uc.now()

		// 1) Bloquear los saldos de ORIGEN Y DESTINO de cada producto. El
		// destino también se modifica leer-luego-escribir: sin su lock, un
		// escritor concurrente de esa clave puede colarse entre la lectura
		// y el Upsert y este traslado pisaría su commit con un saldo viejo.
		// El orden global (producto asc, luego clave de ubicación asc) es el
		// mismo para cualquier par origen/destino, así dos traslados
		// cruzados no se bloquean mutuamente.
		lockOrder := []entity.StockLocation{in.Source, in.Dest}
		if lockOrder[1].Key() < lockOrder[0].Key() {
			lockOrder[0], lockOrder[1] = lockOrder[1], lockOrder[0]
		}
		srcBalances := make(map[string]*entity.Balance, len(codes))
		destBalances := make(map[string]*entity.Balance, len(codes))
		for _, code := range codes {
			for _, loc := range lockOrder {
				bal, err := balRepo.GetForUpdate(loc, code)
				if err != nil {
					return err
				}
				if loc == in.Source {
					srcBalances[code] = bal
				} else {
					destBalances[code] = bal
				}
			}
		}

		// 2) Validar todas las líneas antes de escribir ninguna (evita
		// traslados parciales).
		for _, code := range codes {
			if srcBalances[code].Quantity.LessThan(totals[code]) {
				return &domain.InsufficientStockError{
					ProductCode: code,
					Requested:   totals[code],
					Available:   srcBalances[code].Quantity,
				}
			}
		}

		// 3) Un solo correlativo para todo el traslado.
		doc, err := uc.seq.Next(seqRepo, entity.PrefixTransferNote)
		if err != nil {
			return err
		}

		// 4) Par débito/crédito por línea, mismo documento y timestamp.
		for _, line := range in.Lines {
			note := line.Note
			if note == "" {
				note = in.Note
			}
			out := &entity.Movement{
				Location:       in.Source,
				ProductCode:    line.ProductCode,
				Kind:           entity.MovementKindTRANSFEROUT,
				Quantity:       line.Quantity,
				DocumentNumber: doc,
				Note:           fmt.Sprintf("traslado a %s. %s", in.Dest, note),
				CreatedAt:      now,
				CreatedBy:      in.ActorID,
			}
			if err := movRepo.Append(out); err != nil {
				return err
			}
			inMov := &entity.Movement{
				Location:       in.Dest,
				ProductCode:    line.ProductCode,
				Kind:           entity.MovementKindTRANSFERIN,
				Quantity:       line.Quantity,
				DocumentNumber: doc,
				Note:           fmt.Sprintf("traslado desde %s. %s", in.Source, note),
				CreatedAt:      now,
				CreatedBy:      in.ActorID,
			}
			if err := movRepo.Append(inMov); err != nil {
				return err
			}
			srcBalances[line.ProductCode].Quantity = srcBalances[line.ProductCode].Quantity.Sub(line.Quantity)
			destBalances[line.ProductCode].Quantity = destBalances[line.ProductCode].Quantity.Add(line.Quantity)
		}

		// 5) Actualizar ambos saldos dentro de la misma transacción.
		for _, code := range codes {
			src := srcBalances[code]
			src.UpdatedAt = now
			if err := balRepo.Upsert(src); err != nil {
				return err
			}
			dest := destBalances[code]
			dest.UpdatedAt = now
			if err := balRepo.Upsert(dest); err != nil {
				return err
			}
		}
		docNumber = doc
		return nil
	})
	if err != nil {
		return "", err
	}
	return docNumber, nil
}
