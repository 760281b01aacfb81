package dto

import "time"

// CreateMovementRequest entrada para registrar un despacho o una recepción.
type CreateMovementRequest struct {
	NumeroGuia  string   `json:"numero_guia" validate:"required,min=1,max=50"`
	RutEmpresa  string   `json:"rut_empresa" validate:"required,rut"`
	Observacion string   `json:"observacion" validate:"max=500"`
	Latitud     *float64 `json:"latitud" validate:"omitempty,min=-90,max=90"`
	Longitud    *float64 `json:"longitud" validate:"omitempty,min=-180,max=180"`
}

// UpdateMovementRequest edición parcial; los campos nil no cambian.
type UpdateMovementRequest struct {
	NumeroGuia  *string  `json:"numero_guia" validate:"omitempty,min=1,max=50"`
	RutEmpresa  *string  `json:"rut_empresa" validate:"omitempty,rut"`
	Observacion *string  `json:"observacion" validate:"omitempty,max=500"`
	Latitud     *float64 `json:"latitud" validate:"omitempty,min=-90,max=90"`
	Longitud    *float64 `json:"longitud" validate:"omitempty,min=-180,max=180"`
}

// PhotoResponse foto adjunta a un movimiento.
type PhotoResponse struct {
	ID          int64     `json:"id"`
	Tipo        string    `json:"tipo"`
	FechaSubida time.Time `json:"fecha_subida"`
}

// MovementResponse salida de un despacho o recepción.
type MovementResponse struct {
	ID          int64           `json:"id"`
	Tipo        string          `json:"tipo"`
	NumeroGuia  string          `json:"numero_guia"`
	RutEmpresa  string          `json:"rut_empresa"`
	UsuarioID   int64           `json:"usuario_id"`
	Fecha       time.Time       `json:"fecha"`
	Observacion string          `json:"observacion,omitempty"`
	Latitud     *float64        `json:"latitud"`
	Longitud    *float64        `json:"longitud"`
	Fotos       []PhotoResponse `json:"fotos"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
