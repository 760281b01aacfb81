package entity

import "time"

// Categorías de foto admitidas para un movimiento.
const (
	PhotoCarnet  = "carnet"  // cédula de identidad del conductor
	PhotoPatente = "patente" // placa patente del vehículo
	PhotoCarga   = "carga"   // estado de la carga
)

// ValidPhotoCategory indica si c es una categoría admitida.
func ValidPhotoCategory(c string) bool {
	switch c {
	case PhotoCarnet, PhotoPatente, PhotoCarga:
		return true
	}
	return false
}

// Photo es una imagen adjunta a un movimiento. Se elimina junto con su movimiento.
type Photo struct {
	ID         int64
	MovementID int64
	Kind       MovementKind
	Category   string
	StorageKey string // ruta relativa dentro del almacenamiento de archivos
	UploadedAt time.Time
}
