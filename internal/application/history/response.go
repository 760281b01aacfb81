package history

import (
	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
)

// EntriesResponse convierte las entradas al formato de la API; nunca devuelve nil.
func EntriesResponse(entries []entity.HistoryEntry) []dto.HistoryEntryResponse {
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntryResponse{
			ID:         e.ID,
			Tipo:       string(e.Kind),
			NumeroGuia: e.GuideNumber,
			RutEmpresa: e.CompanyRUT,
			Fecha:      e.Date,
		})
	}
	return out
}

// PageResponse metadatos de paginación de f.
func PageResponse(f *Feed) dto.HistoryPage {
	return dto.HistoryPage{
		Total:       f.Total,
		Pages:       f.Pages,
		CurrentPage: f.CurrentPage,
		PerPage:     f.PerPage,
	}
}
