package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-pro/internal/application/dto"
	"github.com/tu-usuario/almacen-pro/internal/application/ledger"
	"github.com/tu-usuario/almacen-pro/internal/domain"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// LedgerHandler maneja las peticiones HTTP del motor de stock: ingresos,
// salidas, traslados, saldos y kardex (protegido).
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// writeDomainError traduce la taxonomía de errores del dominio a HTTP.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidMovement):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_MOVEMENT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransfer):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_TRANSFER", Message: err.Error()})
	case errors.Is(err, domain.ErrUnknownLocation):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_LOCATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnknownProduct):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_PRODUCT", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		// Los reintentos automáticos ya se agotaron; el cliente puede volver a intentar
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY", Message: "operación abortada por contención, reintentar"})
	case errors.Is(err, domain.ErrSequenceExhausted), errors.Is(err, domain.ErrUnknownPrefix):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SEQUENCE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toLocation(ref dto.LocationRef) entity.StockLocation {
	return entity.StockLocation{WarehouseID: ref.WarehouseID, ReservationID: ref.ReservationID}
}

// Receive godoc
// @Summary      Registrar ingreso de materiales
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "location, product_code, quantity, unit_price (opcional), reference (OC/OS, opcional)"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/receipts [post]
func (h *LedgerHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.uc.Receive(c.Context(), ledger.ReceiveInput{
		Location:    toLocation(in.Location),
		ProductCode: in.ProductCode,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Reference:   in.Reference,
		Note:        in.Note,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentResponse{DocumentNumber: doc})
}

// Issue godoc
// @Summary      Registrar salida de materiales
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueRequest  true  "location, product_code, quantity"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/issues [post]
func (h *LedgerHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.uc.Issue(c.Context(), ledger.IssueInput{
		Location:    toLocation(in.Location),
		ProductCode: in.ProductCode,
		Quantity:    in.Quantity,
		Note:        in.Note,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentResponse{DocumentNumber: doc})
}

// Transfer godoc
// @Summary      Registrar traslado de materiales entre ubicaciones
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "source, dest, lines"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/transfers [post]
func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]ledger.TransferLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, ledger.TransferLine{ProductCode: l.ProductCode, Quantity: l.Quantity, Note: l.Note})
	}
	doc, err := h.uc.Transfer(c.Context(), ledger.TransferInput{
		Source:  toLocation(in.Source),
		Dest:    toLocation(in.Dest),
		Lines:   lines,
		Note:    in.Note,
		ActorID: GetUserID(c),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentResponse{DocumentNumber: doc})
}

// Balance godoc
// @Summary      Consultar saldo actual de un producto en una ubicación
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id    query  string  true  "Bodega"
// @Param        reservation_id  query  string  true  "Reserva"
// @Param        product_code    query  string  true  "Código de producto"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/balance [get]
func (h *LedgerHandler) Balance(c *fiber.Ctx) error {
	ref := dto.LocationRef{
		WarehouseID:   c.Query("warehouse_id"),
		ReservationID: c.Query("reservation_id"),
	}
	productCode := c.Query("product_code")
	qty, err := h.uc.Balance(c.Context(), toLocation(ref), productCode)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.BalanceResponse{Location: ref, ProductCode: productCode, QuantityOnHand: qty})
}

// Kardex godoc
// @Summary      Historial de movimientos de una ubicación (kardex)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id    query  string  true   "Bodega"
// @Param        reservation_id  query  string  true   "Reserva"
// @Param        product_code    query  string  false  "Filtrar por producto"
// @Param        from            query  string  false  "Desde (RFC3339)"
// @Param        to              query  string  false  "Hasta (RFC3339)"
// @Param        after_id        query  int     false  "Cursor: retomar después de este ID"
// @Param        limit           query  int     false  "Máximo de filas (default 200)"
// @Success      200  {object}  dto.KardexResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/kardex [get]
func (h *LedgerHandler) Kardex(c *fiber.Ctx) error {
	filter := repository.KardexFilter{
		Location: entity.StockLocation{
			WarehouseID:   c.Query("warehouse_id"),
			ReservationID: c.Query("reservation_id"),
		},
		ProductCode: c.Query("product_code"),
		AfterID:     int64(c.QueryInt("after_id")),
		Limit:       c.QueryInt("limit"),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}
	movements, err := h.uc.Kardex(c.Context(), filter)
	if err != nil {
		return writeDomainError(c, err)
	}
	resp := dto.KardexResponse{Movements: make([]dto.MovementDTO, 0, len(movements))}
	for _, m := range movements {
		resp.Movements = append(resp.Movements, dto.MovementDTO{
			ID: m.ID,
			Location: dto.LocationRef{
				WarehouseID:   m.Location.WarehouseID,
				ReservationID: m.Location.ReservationID,
			},
			ProductCode:    m.ProductCode,
			Kind:           m.Kind,
			Quantity:       m.Quantity,
			UnitPrice:      m.UnitPrice,
			DocumentNumber: m.DocumentNumber,
			Note:           m.Note,
			CreatedAt:      m.CreatedAt,
		})
	}
	if len(movements) > 0 {
		resp.NextAfterID = movements[len(movements)-1].ID
	}
	return c.JSON(resp)
}

// Rebuild godoc
// @Summary      Reconstruir el saldo de una ubicación desde el kardex
// @Description  Recalcula el saldo sumando todo el historial y sobreescribe
//
//	la proyección. Vía de reparación: ante discrepancia manda el kardex.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RebuildRequest  true  "location, product_code"
// @Success      200   {object}  dto.BalanceResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/balances/rebuild [post]
func (h *LedgerHandler) Rebuild(c *fiber.Ctx) error {
	var in dto.RebuildRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	qty, err := h.uc.Rebuild(c.Context(), toLocation(in.Location), in.ProductCode)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.BalanceResponse{Location: in.Location, ProductCode: in.ProductCode, QuantityOnHand: qty})
}
