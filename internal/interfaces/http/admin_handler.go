package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/skunksss/FP-Registrapp/internal/application/admin"
	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// AdminHandler rutas de administración (solo rol admin).
type AdminHandler struct {
	uc *admin.AdminUseCase
}

// NewAdminHandler construye el handler de administración.
func NewAdminHandler(uc *admin.AdminUseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// Stats godoc
// @Summary      Estadísticas globales
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StatsResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/estadisticas [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListDispatches GET /api/admin/despachos
func (h *AdminHandler) ListDispatches(c *fiber.Ctx) error {
	return h.list(c, entity.KindDispatch)
}

// ListReceipts GET /api/admin/recepciones
func (h *AdminHandler) ListReceipts(c *fiber.Ctx) error {
	return h.list(c, entity.KindReceipt)
}

// list godoc
// @Summary      Listar movimientos de todos los usuarios
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/admin/despachos [get]
// @Router       /api/admin/recepciones [get]
func (h *AdminHandler) list(c *fiber.Ctx, kind entity.MovementKind) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()
	out, err := h.uc.ListAll(c.UserContext(), kind, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UserHistory godoc
// @Summary      Historial combinado de un usuario
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id        path   int  true   "ID del usuario"
// @Param        page      query  int  false  "página (desde 1)"
// @Param        per_page  query  int  false  "tamaño de página (máximo 100)"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/usuarios/{id}/historial [get]
func (h *AdminHandler) UserHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UserHistory(c.UserContext(), id, c.QueryInt("page", 1), min(c.QueryInt("per_page", 0), MaxPerPage))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteDispatch DELETE /api/admin/despachos/:id
func (h *AdminHandler) DeleteDispatch(c *fiber.Ctx) error {
	return h.deleteMovement(c, entity.KindDispatch)
}

// DeleteReceipt DELETE /api/admin/recepciones/:id
func (h *AdminHandler) DeleteReceipt(c *fiber.Ctx) error {
	return h.deleteMovement(c, entity.KindReceipt)
}

func (h *AdminHandler) deleteMovement(c *fiber.Ctx, kind entity.MovementKind) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.DeleteMovement(c.UserContext(), GetUserID(c), kind, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("%s eliminado", kind.Label())})
}

// DeleteDispatchPhoto DELETE /api/admin/despachos/fotos/:fotoId
func (h *AdminHandler) DeleteDispatchPhoto(c *fiber.Ctx) error {
	return h.deletePhoto(c, entity.KindDispatch)
}

// DeleteReceiptPhoto DELETE /api/admin/recepciones/fotos/:fotoId
func (h *AdminHandler) DeleteReceiptPhoto(c *fiber.Ctx) error {
	return h.deletePhoto(c, entity.KindReceipt)
}

func (h *AdminHandler) deletePhoto(c *fiber.Ctx, kind entity.MovementKind) error {
	id, err := paramID(c, "fotoId")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.DeletePhoto(c.UserContext(), GetUserID(c), kind, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "foto eliminada"})
}
