package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// MovementHandler atiende /api/despachos o /api/recepciones según kind.
type MovementHandler struct {
	uc   *movement.UseCase
	kind entity.MovementKind
}

// NewMovementHandler construye el handler para un tipo de movimiento.
func NewMovementHandler(uc *movement.UseCase, kind entity.MovementKind) *MovementHandler {
	return &MovementHandler{uc: uc, kind: kind}
}

// Create godoc
// @Summary      Registrar despacho o recepción
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateMovementRequest  true  "numero_guia, rut_empresa"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/despachos [post]
// @Router       /api/recepciones [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), h.kind, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar movimientos propios
// @Tags         movimientos
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/despachos [get]
// @Router       /api/recepciones [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()
	out, err := h.uc.List(c.UserContext(), h.kind, GetUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de un movimiento con sus fotos
// @Tags         movimientos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "ID"
// @Success      200  {object}  dto.MovementResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id} [get]
// @Router       /api/recepciones/{id} [get]
func (h *MovementHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), h.kind, GetUserID(c), GetRole(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar un movimiento
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                        true  "ID"
// @Param        body  body  dto.UpdateMovementRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/despachos/{id} [put]
// @Router       /api/recepciones/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), h.kind, GetUserID(c), GetRole(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar un movimiento y sus fotos
// @Tags         movimientos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "ID"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id} [delete]
// @Router       /api/recepciones/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), h.kind, GetUserID(c), GetRole(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("%s eliminado", h.kind.Label())})
}

// Receipt godoc
// @Summary      Comprobante PDF
// @Tags         movimientos
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  int  true  "ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/comprobante [get]
// @Router       /api/recepciones/{id}/comprobante [get]
func (h *MovementHandler) Receipt(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	pdf, filename, err := h.uc.ReceiptPDF(c.UserContext(), h.kind, GetUserID(c), GetRole(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}

// UploadPhoto godoc
// @Summary      Subir foto (carnet, patente o carga)
// @Tags         fotos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int   true  "ID del movimiento"
// @Param        tipo  formData  string  true  "carnet | patente | carga"
// @Param        foto  formData  file  true  "imagen PNG o JPEG"
// @Success      201   {object}  dto.PhotoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      413   {object}  dto.ErrorResponse
// @Failure      415   {object}  dto.ErrorResponse
// @Router       /api/despachos/{id}/fotos [post]
// @Router       /api/recepciones/{id}/fotos [post]
func (h *MovementHandler) UploadPhoto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	fh, err := c.FormFile("foto")
	if err != nil {
		return respondError(c, domain.NewValidationError("foto", "es obligatorio"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	out, err := h.uc.UploadPhoto(c.UserContext(), h.kind, GetUserID(c), GetRole(c), id, c.FormValue("tipo"), fh.Filename, fh.Size, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeletePhoto godoc
// @Summary      Eliminar foto
// @Tags         fotos
// @Produce      json
// @Security     BearerAuth
// @Param        fotoId  path  int  true  "ID de la foto"
// @Success      200     {object}  dto.MessageResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/despachos/fotos/{fotoId} [delete]
// @Router       /api/recepciones/fotos/{fotoId} [delete]
func (h *MovementHandler) DeletePhoto(c *fiber.Ctx) error {
	id, err := paramID(c, "fotoId")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.DeletePhoto(c.UserContext(), h.kind, GetUserID(c), GetRole(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "foto eliminada"})
}

// DownloadPhoto godoc
// @Summary      Descargar foto
// @Tags         fotos
// @Produce      image/jpeg,image/png
// @Security     BearerAuth
// @Param        fotoId  path  int  true  "ID de la foto"
// @Success      200     {file}    binary
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/despachos/fotos/{fotoId}/descargar [get]
// @Router       /api/recepciones/fotos/{fotoId}/descargar [get]
func (h *MovementHandler) DownloadPhoto(c *fiber.Ctx) error {
	return h.sendPhoto(c, "attachment")
}

// ViewPhoto godoc
// @Summary      Ver foto en el navegador
// @Tags         fotos
// @Produce      image/jpeg,image/png
// @Security     BearerAuth
// @Param        fotoId  path  int  true  "ID de la foto"
// @Success      200     {file}    binary
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/despachos/fotos/{fotoId}/ver [get]
// @Router       /api/recepciones/fotos/{fotoId}/ver [get]
func (h *MovementHandler) ViewPhoto(c *fiber.Ctx) error {
	return h.sendPhoto(c, "inline")
}

func (h *MovementHandler) sendPhoto(c *fiber.Ctx, disposition string) error {
	id, err := paramID(c, "fotoId")
	if err != nil {
		return respondError(c, err)
	}
	pf, err := h.uc.OpenPhoto(c.UserContext(), h.kind, GetUserID(c), GetRole(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, pf.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`%s; filename="%s"`, disposition, pf.Filename))
	// fasthttp cierra Content al terminar de enviarlo.
	return c.SendStream(pf.Content)
}

// paramID lee un ID entero positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "debe ser un entero positivo")
	}
	return id, nil
}
