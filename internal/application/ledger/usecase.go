package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-pro/internal/application/sequencer"
	"github.com/tu-usuario/almacen-pro/internal/domain"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// UseCase es el motor de stock: registra ingresos, salidas y traslados de
// forma transaccional (SELECT FOR UPDATE sobre el saldo, correlativo dentro
// de la misma transacción, Commit/Rollback) y expone las consultas de saldo
// y kardex.
type UseCase struct {
	txRunner        TxRunner
	productRepo     repository.ProductRepository
	reservationRepo repository.ReservationRepository
	balanceRepo     repository.BalanceRepository
	movementRepo    repository.MovementRepository
	seq             *sequencer.Service

	// now es inyectable para que los tests controlen los timestamps.
	now func() time.Time
	// maxRetries reintentos ante ErrConcurrencyConflict (solo ese error).
	maxRetries int
}

// Config opciones del caso de uso.
type Config struct {
	// MaxRetries reintentos automáticos cuando el backend aborta la
	// transacción por contención. Default 3.
	MaxRetries int
}

// New construye el caso de uso.
func New(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	reservationRepo repository.ReservationRepository,
	balanceRepo repository.BalanceRepository,
	movementRepo repository.MovementRepository,
	seq *sequencer.Service,
	cfg Config,
) *UseCase {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &UseCase{
		txRunner:        txRunner,
		productRepo:     productRepo,
		reservationRepo: reservationRepo,
		balanceRepo:     balanceRepo,
		movementRepo:    movementRepo,
		seq:             seq,
		now:             time.Now,
		maxRetries:      cfg.MaxRetries,
	}
}

// ReceiveInput entrada para un ingreso de materiales (nota de ingreso NI).
type ReceiveInput struct {
	Location    entity.StockLocation
	ProductCode string
	Quantity    decimal.Decimal
	UnitPrice   *decimal.Decimal // opcional, valorización del ingreso
	Reference   string           // correlativo de la OC/OS que lo origina, opcional
	Note        string
	ActorID     string
}

// IssueInput entrada para una salida de materiales (nota de salida NS).
type IssueInput struct {
	Location    entity.StockLocation
	ProductCode string
	Quantity    decimal.Decimal
	Note        string
	ActorID     string
}

// Receive registra un ingreso: sin chequeo de disponibilidad, agrega un
// movimiento RECEIPT y suma al saldo, todo en una transacción. Devuelve el
// correlativo asignado ("NI-001").
func (uc *UseCase) Receive(ctx context.Context, in ReceiveInput) (string, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidMovement
	}
	if in.UnitPrice != nil && in.UnitPrice.LessThan(decimal.Zero) {
		return "", fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidMovement)
	}
	if err := uc.checkLocation(in.Location); err != nil {
		return "", err
	}
	if err := uc.checkProduct(in.ProductCode); err != nil {
		return "", err
	}

	note := in.Note
	if in.Reference != "" {
		note = fmt.Sprintf("ref %s. %s", in.Reference, in.Note)
	}

	var docNumber string
	err := uc.runInTx(ctx, func(
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
		seqRepo repository.SequenceRepository,
	) error {
		now := uc.now()
		// Bloquea la fila de saldo para serializar escritores de la misma clave
		bal, err := balRepo.GetForUpdate(in.Location, in.ProductCode)
		if err != nil {
			return err
		}
		doc, err := uc.seq.Next(seqRepo, entity.PrefixReceiptNote)
		if err != nil {
			return err
		}
		mov := &entity.Movement{
			Location:       in.Location,
			ProductCode:    in.ProductCode,
			Kind:           entity.MovementKindRECEIPT,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			DocumentNumber: doc,
			Note:           note,
			CreatedAt:      now,
			CreatedBy:      in.ActorID,
		}
		if err := movRepo.Append(mov); err != nil {
			return err
		}
		bal.Quantity = bal.Quantity.Add(in.Quantity)
		bal.UpdatedAt = now
		if err := balRepo.Upsert(bal); err != nil {
			return err
		}
		docNumber = doc
		return nil
	})
	if err != nil {
		return "", err
	}
	return docNumber, nil
}

// Issue registra una salida: bloquea el saldo, verifica disponibilidad
// (todo o nada), agrega un movimiento ISSUE y resta del saldo. Devuelve el
// correlativo asignado ("NS-001"). Una salida es el caso particular de un
// traslado con una sola ubicación.
func (uc *UseCase) Issue(ctx context.Context, in IssueInput) (string, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidMovement
	}
	if err := uc.checkLocation(in.Location); err != nil {
		return "", err
	}
	if err := uc.checkProduct(in.ProductCode); err != nil {
		return "", err
	}

	var docNumber string
	err := uc.runInTx(ctx, func(
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
		seqRepo repository.SequenceRepository,
	) error {
		now := uc.now()
		bal, err := balRepo.GetForUpdate(in.Location, in.ProductCode)
		if err != nil {
			return err
		}
		// Disponibilidad se valida antes de escribir nada
		if bal.Quantity.LessThan(in.Quantity) {
			return &domain.InsufficientStockError{
				ProductCode: in.ProductCode,
				Requested:   in.Quantity,
				Available:   bal.Quantity,
			}
		}
		doc, err := uc.seq.Next(seqRepo, entity.PrefixIssueNote)
		if err != nil {
			return err
		}
		mov := &entity.Movement{
			Location:       in.Location,
			ProductCode:    in.ProductCode,
			Kind:           entity.MovementKindISSUE,
			Quantity:       in.Quantity,
			DocumentNumber: doc,
			Note:           in.Note,
			CreatedAt:      now,
			CreatedBy:      in.ActorID,
		}
		if err := movRepo.Append(mov); err != nil {
			return err
		}
		bal.Quantity = bal.Quantity.Sub(in.Quantity)
		bal.UpdatedAt = now
		if err := balRepo.Upsert(bal); err != nil {
			return err
		}
		docNumber = doc
		return nil
	})
	if err != nil {
		return "", err
	}
	return docNumber, nil
}

// checkLocation valida que (bodega, reserva) exista y estén relacionadas.
func (uc *UseCase) checkLocation(loc entity.StockLocation) error {
	if loc.IsZero() {
		return fmt.Errorf("%w: bodega y reserva son requeridas", domain.ErrUnknownLocation)
	}
	ok, err := uc.reservationRepo.ExistsInWarehouse(loc.ReservationID, loc.WarehouseID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownLocation, loc)
	}
	return nil
}

// checkProduct valida que el producto exista en el maestro.
func (uc *UseCase) checkProduct(code string) error {
	if code == "" {
		return fmt.Errorf("%w: código vacío", domain.ErrUnknownProduct)
	}
	ok, err := uc.productRepo.ExistsByCode(code)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownProduct, code)
	}
	return nil
}

// runInTx ejecuta fn en una transacción, reintentando únicamente ante
// ErrConcurrencyConflict (abortos por contención reportados por el backend)
// con backoff exponencial y jitter. Cualquier otro error se devuelve tal cual.
func (uc *UseCase) runInTx(ctx context.Context, fn func(
	repository.MovementRepository,
	repository.BalanceRepository,
	repository.SequenceRepository,
) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = uc.txRunner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if attempt >= uc.maxRetries {
			return err
		}
		backoff := time.Duration(1<<attempt) * 25 * time.Millisecond
		backoff += time.Duration(rand.Int63n(int64(10 * time.Millisecond)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
