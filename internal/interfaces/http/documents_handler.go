package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-pro/internal/application/dto"
	"github.com/tu-usuario/almacen-pro/internal/application/sequencer"
	"github.com/tu-usuario/almacen-pro/internal/domain"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// DocumentsHandler asigna correlativos para los módulos de órdenes (OC, OS),
// que crean sus documentos fuera de este servicio pero numeran aquí para
// mantener una sola secuencia por prefijo.
type DocumentsHandler struct {
	seq     *sequencer.Service
	seqRepo repository.SequenceRepository
}

// NewDocumentsHandler construye el handler.
func NewDocumentsHandler(seq *sequencer.Service, seqRepo repository.SequenceRepository) *DocumentsHandler {
	return &DocumentsHandler{seq: seq, seqRepo: seqRepo}
}

// Next godoc
// @Summary      Asignar el siguiente correlativo de un prefijo
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NextDocumentRequest  true  "prefix: OC | OS | NS | NT | NI"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/documents/next [post]
func (h *DocumentsHandler) Next(c *fiber.Ctx) error {
	var in dto.NextDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.seq.Next(h.seqRepo, in.Prefix)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPrefix) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_PREFIX", Message: err.Error()})
		}
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentResponse{DocumentNumber: doc})
}
