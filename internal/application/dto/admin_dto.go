package dto

// StatsResponse conteos globales del panel de administración.
type StatsResponse struct {
	TotalUsuarios          int `json:"total_usuarios"`
	UsuariosConDispositivo int `json:"usuarios_con_dispositivo"`
	TotalDespachos         int `json:"total_despachos"`
	TotalRecepciones       int `json:"total_recepciones"`
}
