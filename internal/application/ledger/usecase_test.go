package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-pro/internal/application/sequencer"
	"github.com/tu-usuario/almacen-pro/internal/domain"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: emulan la capa postgres con semántica transaccional
// (snapshot + restore en lugar de BEGIN/ROLLBACK).
// ──────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	movements []*entity.Movement
	balances  map[string]entity.Balance
	sequences map[string]int64
	nextMovID int64

	// lockLog registra cada clave bloqueada vía GetForUpdate, en orden,
	// para verificar qué filas serializa cada operación y en qué orden.
	lockLog []string

	// failAppendAt hace fallar el N-ésimo Append (1-based) para probar
	// que la transacción revierte todo lo escrito antes del fallo.
	failAppendAt int
	appendCount  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances:  map[string]entity.Balance{},
		sequences: map[string]int64{},
	}
}

func balKey(loc entity.StockLocation, code string) string {
	return loc.Key() + "|" + code
}

type storeSnapshot struct {
	movements []*entity.Movement
	balances  map[string]entity.Balance
	sequences map[string]int64
	nextMovID int64
}

func (s *fakeStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		movements: append([]*entity.Movement(nil), s.movements...),
		balances:  map[string]entity.Balance{},
		sequences: map[string]int64{},
		nextMovID: s.nextMovID,
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap storeSnapshot) {
	s.movements = snap.movements
	s.balances = snap.balances
	s.sequences = snap.sequences
	s.nextMovID = snap.nextMovID
}

type fakeMovementRepo struct{ s *fakeStore }

func (r *fakeMovementRepo) Append(m *entity.Movement) error {
	r.s.appendCount++
	if r.s.failAppendAt > 0 && r.s.appendCount == r.s.failAppendAt {
		return fmt.Errorf("fallo inyectado en append %d", r.s.appendCount)
	}
	r.s.nextMovID++
	m.ID = r.s.nextMovID
	clone := *m
	r.s.movements = append(r.s.movements, &clone)
	return nil
}

func (r *fakeMovementRepo) List(filter repository.KardexFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.Location != filter.Location {
			continue
		}
		if filter.ProductCode != "" && m.ProductCode != filter.ProductCode {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		if m.ID <= filter.AfterID {
			continue
		}
		out = append(out, m)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) SumByLocationProduct(loc entity.StockLocation, code string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.Location == loc && m.ProductCode == code {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

type fakeBalanceRepo struct{ s *fakeStore }

func (r *fakeBalanceRepo) Get(loc entity.StockLocation, code string) (*entity.Balance, error) {
	if bal, ok := r.s.balances[balKey(loc, code)]; ok {
		clone := bal
		return &clone, nil
	}
	return &entity.Balance{Location: loc, ProductCode: code, Quantity: decimal.Zero}, nil
}

// GetForUpdate registra el lock y materializa la fila en cero si no existe,
// igual que el adaptador real: el lock debe tomarse también en el primer
// movimiento de la clave.
func (r *fakeBalanceRepo) GetForUpdate(loc entity.StockLocation, code string) (*entity.Balance, error) {
	key := balKey(loc, code)
	r.s.lockLog = append(r.s.lockLog, key)
	if _, ok := r.s.balances[key]; !ok {
		r.s.balances[key] = entity.Balance{Location: loc, ProductCode: code, Quantity: decimal.Zero}
	}
	return r.Get(loc, code)
}

func (r *fakeBalanceRepo) Upsert(bal *entity.Balance) error {
	r.s.balances[balKey(bal.Location, bal.ProductCode)] = *bal
	return nil
}

type fakeSequenceRepo struct{ s *fakeStore }

func (r *fakeSequenceRepo) NextValue(prefix string) (int64, error) {
	r.s.sequences[prefix]++
	return r.s.sequences[prefix], nil
}

// fakeTxRunner ejecuta fn sobre el store y, si falla, restaura el estado
// previo (equivalente al ROLLBACK de la implementación real). Los errores
// en failures se devuelven antes de ejecutar fn, simulando abortos del
// backend por contención.
type fakeTxRunner struct {
	s        *fakeStore
	failures []error
	runs     int
}

func (tx *fakeTxRunner) Run(_ context.Context, fn func(
	repository.MovementRepository,
	repository.BalanceRepository,
	repository.SequenceRepository,
) error) error {
	tx.runs++
	if len(tx.failures) > 0 {
		err := tx.failures[0]
		tx.failures = tx.failures[1:]
		if err != nil {
			return err
		}
	}
	snap := tx.s.snapshot()
	err := fn(&fakeMovementRepo{tx.s}, &fakeBalanceRepo{tx.s}, &fakeSequenceRepo{tx.s})
	if err != nil {
		tx.s.restore(snap)
	}
	return err
}

type fakeProductRepo struct{ codes map[string]bool }

func (r *fakeProductRepo) GetByCode(code string) (*entity.Product, error) {
	if !r.codes[code] {
		return nil, fmt.Errorf("producto %s no encontrado", code)
	}
	return &entity.Product{Code: code}, nil
}

func (r *fakeProductRepo) ExistsByCode(code string) (bool, error) {
	return r.codes[code], nil
}

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

type fakeReservationRepo struct{ pairs map[string]bool }

func (r *fakeReservationRepo) GetByID(id string) (*entity.Reservation, error) {
	return &entity.Reservation{ID: id}, nil
}

func (r *fakeReservationRepo) ExistsInWarehouse(reservationID, warehouseID string) (bool, error) {
	return r.pairs[reservationID+"|"+warehouseID], nil
}

func (r *fakeReservationRepo) ListByWarehouse(string, int, int) ([]*entity.Reservation, error) {
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del caso de uso bajo prueba
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	locCentral = entity.StockLocation{WarehouseID: "WH1", ReservationID: "R1"}
	locObra    = entity.StockLocation{WarehouseID: "WH1", ReservationID: "R2"}
)

func newTestUseCase(t *testing.T) (*UseCase, *fakeStore, *fakeTxRunner) {
	t.Helper()
	store := newFakeStore()
	txRunner := &fakeTxRunner{s: store}
	products := &fakeProductRepo{codes: map[string]bool{"CEM-001": true, "FIE-012": true}}
	reservations := &fakeReservationRepo{pairs: map[string]bool{
		"R1|WH1": true,
		"R2|WH1": true,
	}}
	uc := New(
		txRunner,
		products,
		reservations,
		&fakeBalanceRepo{s: store},
		&fakeMovementRepo{s: store},
		sequencer.New(sequencer.Config{}),
		Config{},
	)
	uc.now = func() time.Time { return testNow }
	return uc, store, txRunner
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Receive
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_AgregaMovimientoYActualizaSaldo(t *testing.T) {
	uc, store, _ := newTestUseCase(t)

	doc, err := uc.Receive(context.Background(), ReceiveInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("100"),
		Reference:   "OC-001",
		ActorID:     "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "NI-001", doc, "el primer ingreso debe llevar el correlativo NI-001")

	require.Len(t, store.movements, 1)
	mov := store.movements[0]
	assert.Equal(t, entity.MovementKindRECEIPT, mov.Kind)
	assert.True(t, mov.Quantity.Equal(d("100")))
	assert.Equal(t, "NI-001", mov.DocumentNumber)
	assert.Equal(t, "user-1", mov.CreatedBy)
	assert.Contains(t, mov.Note, "OC-001", "la referencia a la orden debe quedar en la nota")

	bal, err := uc.Balance(context.Background(), locCentral, "CEM-001")
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("100")))
}

func TestReceive_CantidadNoPositiva(t *testing.T) {
	uc, store, _ := newTestUseCase(t)

	_, err := uc.Receive(context.Background(), ReceiveInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("0"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)

	_, err = uc.Receive(context.Background(), ReceiveInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("-5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	assert.Empty(t, store.movements, "un rechazo de validación no debe escribir nada")
}

func TestReceive_PrecioUnitarioNegativo(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	price := d("-1")
	_, err := uc.Receive(context.Background(), ReceiveInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("10"),
		UnitPrice:   &price,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

func TestReceive_UbicacionDesconocida(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	_, err := uc.Receive(context.Background(), ReceiveInput{
		Location:    entity.StockLocation{WarehouseID: "WH9", ReservationID: "R1"},
		ProductCode: "CEM-001",
		Quantity:    d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownLocation,
		"la reserva debe pertenecer a la bodega indicada")
}

func TestReceive_ProductoDesconocido(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	_, err := uc.Receive(context.Background(), ReceiveInput{
		Location:    locCentral,
		ProductCode: "NO-EXISTE",
		Quantity:    d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

// ──────────────────────────────────────────────────────────────────────────────
// Issue
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_DescuentaDelSaldo(t *testing.T) {
	uc, store, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "100")

	doc, err := uc.Issue(context.Background(), IssueInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("30"),
		ActorID:     "user-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "NS-001", doc, "la secuencia NS es independiente de la NI")

	bal, err := uc.Balance(context.Background(), locCentral, "CEM-001")
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("70")))
	require.Len(t, store.movements, 2)
	assert.Equal(t, entity.MovementKindISSUE, store.movements[1].Kind)
}

func TestIssue_StockInsuficiente(t *testing.T) {
	uc, store, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "20")

	_, err := uc.Issue(context.Background(), IssueInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("25"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El error tipado reporta lo pedido y lo disponible al momento de validar
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "CEM-001", insufficient.ProductCode)
	assert.True(t, insufficient.Requested.Equal(d("25")))
	assert.True(t, insufficient.Available.Equal(d("20")))

	// Todo o nada: el rechazo no escribe movimientos ni toca el saldo
	require.Len(t, store.movements, 1)
	bal, err := uc.Balance(context.Background(), locCentral, "CEM-001")
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("20")))
}

func TestIssue_RechazoNoConsumeCorrelativo(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "10")

	_, err := uc.Issue(context.Background(), IssueInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("999"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La siguiente salida válida sigue siendo NS-001: la numeración no deja huecos
	doc, err := uc.Issue(context.Background(), IssueInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "NS-001", doc)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos y atomicidad
// ──────────────────────────────────────────────────────────────────────────────

func TestRunInTx_ReintentaSoloAnteContencion(t *testing.T) {
	uc, _, txRunner := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "50")
	txRunner.runs = 0

	// Dos abortos por contención y luego éxito
	txRunner.failures = []error{domain.ErrConcurrencyConflict, domain.ErrConcurrencyConflict}
	doc, err := uc.Issue(context.Background(), IssueInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "NS-001", doc)
	assert.Equal(t, 3, txRunner.runs, "debe reintentar hasta lograr el commit")
}

func TestRunInTx_AgotaReintentos(t *testing.T) {
	uc, _, txRunner := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "50")

	// Más abortos que reintentos configurados (default 3)
	txRunner.failures = []error{
		domain.ErrConcurrencyConflict, domain.ErrConcurrencyConflict,
		domain.ErrConcurrencyConflict, domain.ErrConcurrencyConflict,
	}
	_, err := uc.Issue(context.Background(), IssueInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestRunInTx_NoReintentaOtrosErrores(t *testing.T) {
	uc, _, txRunner := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "50")
	txRunner.runs = 0

	boom := errors.New("fallo permanente")
	txRunner.failures = []error{boom}
	_, err := uc.Issue(context.Background(), IssueInput{
		Location:    locCentral,
		ProductCode: "CEM-001",
		Quantity:    d("10"),
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, txRunner.runs, "solo los abortos por contención se reintentan")
}

// mustReceive helper: ingreso que no debe fallar.
func mustReceive(t *testing.T, uc *UseCase, loc entity.StockLocation, code, qty string) string {
	t.Helper()
	doc, err := uc.Receive(context.Background(), ReceiveInput{
		Location:    loc,
		ProductCode: code,
		Quantity:    d(qty),
	})
	require.NoError(t, err)
	return doc
}
