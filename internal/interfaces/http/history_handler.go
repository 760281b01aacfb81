package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/application/history"
)

// MaxPerPage tope de per_page en el historial.
const MaxPerPage = 100

// HistoryHandler expone el historial paginado del usuario autenticado.
type HistoryHandler struct {
	engine *history.Engine
}

// NewHistoryHandler construye el handler de historial.
func NewHistoryHandler(engine *history.Engine) *HistoryHandler {
	return &HistoryHandler{engine: engine}
}

// Combined godoc
// @Summary      Historial combinado de despachos y recepciones
// @Tags         historial
// @Produce      json
// @Security     BearerAuth
// @Param        page          query  int     false  "página (desde 1)"
// @Param        per_page      query  int     false  "tamaño de página (máximo 100)"
// @Param        rut_empresa   query  string  false  "coincidencia parcial"
// @Param        numero_guia   query  string  false  "coincidencia parcial"
// @Param        fecha_inicio  query  string  false  "YYYY-MM-DD"
// @Param        fecha_fin     query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/historial [get]
func (h *HistoryHandler) Combined(c *fiber.Ctx) error {
	feed, err := h.query(c, history.ScopeCombined)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.HistoryResponse{
		Movimientos: history.EntriesResponse(feed.Entries),
		HistoryPage: history.PageResponse(feed),
	})
}

// Dispatches godoc
// @Summary      Historial de despachos
// @Tags         historial
// @Produce      json
// @Security     BearerAuth
// @Param        page          query  int     false  "página (desde 1)"
// @Param        per_page      query  int     false  "tamaño de página (máximo 100)"
// @Param        rut_empresa   query  string  false  "coincidencia parcial"
// @Param        numero_guia   query  string  false  "coincidencia parcial"
// @Param        fecha_inicio  query  string  false  "YYYY-MM-DD"
// @Param        fecha_fin     query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.DispatchHistoryResponse
// @Router       /api/historial/despachos [get]
func (h *HistoryHandler) Dispatches(c *fiber.Ctx) error {
	feed, err := h.query(c, history.ScopeDispatches)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DispatchHistoryResponse{
		Despachos:   history.EntriesResponse(feed.Entries),
		HistoryPage: history.PageResponse(feed),
	})
}

// Receipts godoc
// @Summary      Historial de recepciones
// @Tags         historial
// @Produce      json
// @Security     BearerAuth
// @Param        page          query  int     false  "página (desde 1)"
// @Param        per_page      query  int     false  "tamaño de página (máximo 100)"
// @Param        rut_empresa   query  string  false  "coincidencia parcial"
// @Param        numero_guia   query  string  false  "coincidencia parcial"
// @Param        fecha_inicio  query  string  false  "YYYY-MM-DD"
// @Param        fecha_fin     query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ReceiptHistoryResponse
// @Router       /api/historial/recepciones [get]
func (h *HistoryHandler) Receipts(c *fiber.Ctx) error {
	feed, err := h.query(c, history.ScopeReceipts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReceiptHistoryResponse{
		Recepciones: history.EntriesResponse(feed.Entries),
		HistoryPage: history.PageResponse(feed),
	})
}

func (h *HistoryHandler) query(c *fiber.Ctx, scope history.Scope) (*history.Feed, error) {
	// page y per_page se leen por separado: uno no numérico vuelve a su valor por defecto sin arrastrar al otro.
	in := dto.HistoryRequest{
		RutEmpresa:  c.Query("rut_empresa"),
		NumeroGuia:  c.Query("numero_guia"),
		FechaInicio: c.Query("fecha_inicio"),
		FechaFin:    c.Query("fecha_fin"),
		Page:        c.QueryInt("page", 0),
		PerPage:     c.QueryInt("per_page", 0),
	}
	for _, key := range []string{"page", "per_page"} {
		if raw := c.Query(key); raw != "" {
			if _, err := strconv.Atoi(raw); err != nil {
				log.Warn().Str(key, raw).Str("path", c.Path()).Msg("historial: parámetro de paginación inválido, se usa el valor por defecto")
			}
		}
	}
	return h.engine.Query(c.UserContext(), history.Query{
		UserID:  GetUserID(c),
		Filter:  historyFilter(c, in),
		Page:    in.Page,
		PerPage: min(in.PerPage, MaxPerPage),
		Scope:   scope,
	})
}

// historyFilter arma el filtro; una fecha mal formada se descarta con un warning.
func historyFilter(c *fiber.Ctx, in dto.HistoryRequest) history.Filter {
	f := history.Filter{
		CompanyRUT:  in.RutEmpresa,
		GuideNumber: in.NumeroGuia,
	}
	var err error
	if f.DateFrom, err = history.ParseDate(in.FechaInicio); err != nil {
		log.Warn().Str("fecha_inicio", in.FechaInicio).Int64("user_id", GetUserID(c)).Msg("historial: fecha mal formada, se ignora")
	}
	if f.DateTo, err = history.ParseDate(in.FechaFin); err != nil {
		log.Warn().Str("fecha_fin", in.FechaFin).Int64("user_id", GetUserID(c)).Msg("historial: fecha mal formada, se ignora")
	}
	return f
}
