package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-pro/internal/domain"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
)

func TestTransfer_MueveStockEntreUbicaciones(t *testing.T) {
	uc, store, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "100")

	doc, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines: []TransferLine{
			{ProductCode: "CEM-001", Quantity: d("40")},
		},
		ActorID: "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "NT-001", doc)

	src, err := uc.Balance(context.Background(), locCentral, "CEM-001")
	require.NoError(t, err)
	dest, err := uc.Balance(context.Background(), locObra, "CEM-001")
	require.NoError(t, err)
	assert.True(t, src.Equal(d("60")))
	assert.True(t, dest.Equal(d("40")), "lo que sale del origen entra al destino")

	// Par débito/crédito con el mismo documento y timestamp
	require.Len(t, store.movements, 3) // ingreso + OUT + IN
	out, in := store.movements[1], store.movements[2]
	assert.Equal(t, entity.MovementKindTRANSFEROUT, out.Kind)
	assert.Equal(t, entity.MovementKindTRANSFERIN, in.Kind)
	assert.Equal(t, out.DocumentNumber, in.DocumentNumber)
	assert.Equal(t, out.CreatedAt, in.CreatedAt)
	assert.True(t, out.Quantity.Equal(in.Quantity))
}

func TestTransfer_VariasLineasCompartenCorrelativo(t *testing.T) {
	uc, store, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "100")
	mustReceive(t, uc, locCentral, "FIE-012", "50")

	doc, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines: []TransferLine{
			{ProductCode: "CEM-001", Quantity: d("10")},
			{ProductCode: "FIE-012", Quantity: d("5")},
		},
	})
	require.NoError(t, err)

	count := 0
	for _, m := range store.movements {
		if m.DocumentNumber == doc {
			count++
		}
	}
	assert.Equal(t, 4, count, "todas las líneas del traslado llevan el mismo documento")
}

func TestTransfer_OrigenIgualDestino(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	_, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locCentral,
		Lines:  []TransferLine{{ProductCode: "CEM-001", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransfer)
}

func TestTransfer_SinLineas(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	_, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransfer)
}

func TestTransfer_LineasDuplicadasNoBurlanElChequeo(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "30")

	// Dos líneas de 20 del mismo producto: cada una cabría sola, la suma no
	_, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines: []TransferLine{
			{ProductCode: "CEM-001", Quantity: d("20")},
			{ProductCode: "CEM-001", Quantity: d("20")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	bal, berr := uc.Balance(context.Background(), locCentral, "CEM-001")
	require.NoError(t, berr)
	assert.True(t, bal.Equal(d("30")), "el rechazo no debe mover nada")
}

func TestTransfer_InsuficienteEnUnaLineaNoEscribeNinguna(t *testing.T) {
	uc, store, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "100")
	mustReceive(t, uc, locCentral, "FIE-012", "3")
	before := len(store.movements)

	_, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines: []TransferLine{
			{ProductCode: "CEM-001", Quantity: d("10")}, // alcanza
			{ProductCode: "FIE-012", Quantity: d("5")},  // no alcanza
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, store.movements, before,
		"la validación es todo o nada: ninguna línea se escribe")
}

func TestTransfer_FalloAMitadRevierteTodo(t *testing.T) {
	uc, store, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "100")

	// El ingreso consumió el primer Append; el fallo cae en el TRANSFER_IN,
	// después de que el TRANSFER_OUT ya se escribió dentro de la transacción.
	store.failAppendAt = 3
	_, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines:  []TransferLine{{ProductCode: "CEM-001", Quantity: d("40")}},
	})
	require.Error(t, err)

	// Nunca queda un débito sin su crédito
	require.Len(t, store.movements, 1)
	src, berr := uc.Balance(context.Background(), locCentral, "CEM-001")
	require.NoError(t, berr)
	dest, berr := uc.Balance(context.Background(), locObra, "CEM-001")
	require.NoError(t, berr)
	assert.True(t, src.Equal(d("100")))
	assert.True(t, dest.Equal(d("0")))

	// Y el correlativo revertido se reutiliza en el siguiente traslado
	store.failAppendAt = 0
	doc, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines:  []TransferLine{{ProductCode: "CEM-001", Quantity: d("40")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "NT-001", doc)
}

func TestTransfer_BloqueaOrigenYDestino(t *testing.T) {
	uc, store, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "100")
	store.lockLog = nil

	_, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines:  []TransferLine{{ProductCode: "CEM-001", Quantity: d("40")}},
	})
	require.NoError(t, err)

	// El destino también es leer-luego-escribir: sin su lock, un escritor
	// concurrente de esa clave podría commitear entre la lectura y el
	// Upsert y el traslado pisaría ese commit con un saldo viejo.
	assert.Contains(t, store.lockLog, balKey(locCentral, "CEM-001"))
	assert.Contains(t, store.lockLog, balKey(locObra, "CEM-001"))
}

func TestTransfer_OrdenDeBloqueoGlobalmenteDeterminista(t *testing.T) {
	uc, store, _ := newTestUseCase(t)
	mustReceive(t, uc, locCentral, "CEM-001", "100")
	mustReceive(t, uc, locObra, "CEM-001", "100")

	// Dos traslados cruzados sobre la misma clave: ambos deben adquirir
	// los locks en el mismo orden global, o podrían esperarse mutuamente.
	store.lockLog = nil
	_, err := uc.Transfer(context.Background(), TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines:  []TransferLine{{ProductCode: "CEM-001", Quantity: d("10")}},
	})
	require.NoError(t, err)
	ida := append([]string(nil), store.lockLog...)

	store.lockLog = nil
	_, err = uc.Transfer(context.Background(), TransferInput{
		Source: locObra,
		Dest:   locCentral,
		Lines:  []TransferLine{{ProductCode: "CEM-001", Quantity: d("10")}},
	})
	require.NoError(t, err)
	vuelta := store.lockLog

	assert.Equal(t, ida, vuelta,
		"el orden de adquisición no depende de cuál ubicación es origen")
}

// Flujo completo de una obra: ingreso por orden de compra, consumo en
// bodega central, traslado a la obra y un retiro que excede lo disponible.
func TestFlujoCompleto_IngresoSalidaTrasladoYRechazo(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	ctx := context.Background()

	doc, err := uc.Receive(ctx, ReceiveInput{
		Location: locCentral, ProductCode: "CEM-001", Quantity: d("100"), Reference: "OC-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "NI-001", doc)

	doc, err = uc.Issue(ctx, IssueInput{
		Location: locCentral, ProductCode: "CEM-001", Quantity: d("30"),
	})
	require.NoError(t, err)
	assert.Equal(t, "NS-001", doc)

	doc, err = uc.Transfer(ctx, TransferInput{
		Source: locCentral,
		Dest:   locObra,
		Lines:  []TransferLine{{ProductCode: "CEM-001", Quantity: d("50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "NT-001", doc)

	// Quedan 20 en la central: pedir 25 debe rechazarse con el detalle exacto
	_, err = uc.Issue(ctx, IssueInput{
		Location: locCentral, ProductCode: "CEM-001", Quantity: d("25"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	src, err := uc.Balance(ctx, locCentral, "CEM-001")
	require.NoError(t, err)
	dest, err := uc.Balance(ctx, locObra, "CEM-001")
	require.NoError(t, err)
	assert.True(t, src.Equal(d("20")))
	assert.True(t, dest.Equal(d("50")))

	// Conservación: la reconstrucción desde el kardex coincide con la proyección
	rebuilt, err := uc.Rebuild(ctx, locCentral, "CEM-001")
	require.NoError(t, err)
	assert.True(t, rebuilt.Equal(d("20")))
	rebuilt, err = uc.Rebuild(ctx, locObra, "CEM-001")
	require.NoError(t, err)
	assert.True(t, rebuilt.Equal(d("50")))
}
