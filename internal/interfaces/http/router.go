package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-pro/internal/application/ledger"
	"github.com/tu-usuario/almacen-pro/internal/application/sequencer"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC        *ledger.UseCase
	Sequencer       *sequencer.Service
	SequenceRepo    repository.SequenceRepository
	WarehouseRepo   repository.WarehouseRepository
	ReservationRepo repository.ReservationRepository
	ProductRepo     repository.ProductRepository
	JWTSecret       string
}

// Router registra las rutas de la API. Todas las rutas requieren Bearer
// Token; las escrituras del kardex requieren además rol admin o bodeguero.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	writers := RequireRole(RoleAdmin, RoleBodeguero)

	// Motor de stock (kardex, saldos, movimientos)
	ledgerGroup := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	ledgerGroup.Post("/receipts", writers, ledgerHandler.Receive)
	ledgerGroup.Post("/issues", writers, ledgerHandler.Issue)
	ledgerGroup.Post("/transfers", writers, ledgerHandler.Transfer)
	ledgerGroup.Get("/balance", ledgerHandler.Balance)
	ledgerGroup.Get("/kardex", ledgerHandler.Kardex)
	ledgerGroup.Post("/balances/rebuild", RequireRole(RoleAdmin), ledgerHandler.Rebuild)

	// Correlativos para los módulos de órdenes (OC, OS)
	documents := api.Group("/documents")
	documentsHandler := NewDocumentsHandler(deps.Sequencer, deps.SequenceRepo)
	documents.Post("/next", writers, documentsHandler.Next)

	// Datos maestros (solo lectura)
	masterdataHandler := NewMasterdataHandler(deps.WarehouseRepo, deps.ReservationRepo, deps.ProductRepo)
	api.Get("/warehouses", masterdataHandler.ListWarehouses)
	api.Get("/reservations", masterdataHandler.ListReservations)
	api.Get("/products", masterdataHandler.ListProducts)
}
