package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-pro/internal/application/dto"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// MasterdataHandler expone consultas de solo lectura de bodegas, reservas y
// productos para las pantallas del motor de stock. El CRUD de datos maestros
// vive en otro sistema; aquí no hay escritura.
type MasterdataHandler struct {
	warehouseRepo   repository.WarehouseRepository
	reservationRepo repository.ReservationRepository
	productRepo     repository.ProductRepository
}

// NewMasterdataHandler construye el handler.
func NewMasterdataHandler(
	warehouseRepo repository.WarehouseRepository,
	reservationRepo repository.ReservationRepository,
	productRepo repository.ProductRepository,
) *MasterdataHandler {
	return &MasterdataHandler{
		warehouseRepo:   warehouseRepo,
		reservationRepo: reservationRepo,
		productRepo:     productRepo,
	}
}

// ListWarehouses godoc
// @Summary      Listar bodegas
// @Tags         masterdata
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.WarehouseDTO
// @Router       /api/warehouses [get]
func (h *MasterdataHandler) ListWarehouses(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.warehouseRepo.List(page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.WarehouseDTO, 0, len(list))
	for _, w := range list {
		out = append(out, dto.WarehouseDTO{ID: w.ID, Code: w.Code, Name: w.Name, Address: w.Address})
	}
	return c.JSON(out)
}

// ListReservations godoc
// @Summary      Listar reservas de una bodega
// @Tags         masterdata
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {array}  dto.ReservationDTO
// @Router       /api/reservations [get]
func (h *MasterdataHandler) ListReservations(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.reservationRepo.ListByWarehouse(warehouseID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ReservationDTO, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ReservationDTO{ID: r.ID, WarehouseID: r.WarehouseID, Name: r.Name})
	}
	return c.JSON(out)
}

// ListProducts godoc
// @Summary      Listar productos
// @Tags         masterdata
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductDTO
// @Router       /api/products [get]
func (h *MasterdataHandler) ListProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.productRepo.List(page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProductDTO{ID: p.ID, Code: p.Code, Description: p.Description, UnitMeasure: p.UnitMeasure})
	}
	return c.JSON(out)
}
