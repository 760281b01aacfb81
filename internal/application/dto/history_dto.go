package dto

import "time"

// HistoryRequest parámetros de consulta del historial. Las fechas van como YYYY-MM-DD.
type HistoryRequest struct {
	Page        int    `query:"page"`
	PerPage     int    `query:"per_page"`
	RutEmpresa  string `query:"rut_empresa"`
	NumeroGuia  string `query:"numero_guia"`
	FechaInicio string `query:"fecha_inicio"`
	FechaFin    string `query:"fecha_fin"`
}

// HistoryEntryResponse fila del historial; Tipo es "despacho" o "recepcion".
type HistoryEntryResponse struct {
	ID         int64     `json:"id"`
	Tipo       string    `json:"tipo"`
	NumeroGuia string    `json:"numero_guia"`
	RutEmpresa string    `json:"rut_empresa"`
	Fecha      time.Time `json:"fecha"`
}

// HistoryPage metadatos de paginación del historial.
type HistoryPage struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

// HistoryResponse historial combinado (despachos y recepciones).
type HistoryResponse struct {
	Movimientos []HistoryEntryResponse `json:"movimientos"`
	HistoryPage
}

// DispatchHistoryResponse historial solo de despachos.
type DispatchHistoryResponse struct {
	Despachos []HistoryEntryResponse `json:"despachos"`
	HistoryPage
}

// ReceiptHistoryResponse historial solo de recepciones.
type ReceiptHistoryResponse struct {
	Recepciones []HistoryEntryResponse `json:"recepciones"`
	HistoryPage
}
