package dto

import "time"

// CreateUserRequest alta de usuario desde la CLI de provisión (password en texto, se hashea en use case).
type CreateUserRequest struct {
	RUT      string `json:"rut" validate:"required,rut"`
	Email    string `json:"correo" validate:"omitempty,email,max=120"`
	Name     string `json:"nombre" validate:"omitempty,max=120"`
	Password string `json:"password" validate:"required,min=4"`
	Role     string `json:"rol" validate:"omitempty,oneof=admin operador"`
	Device   string `json:"dispositivo" validate:"omitempty,max=120"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64     `json:"id"`
	RUT       string    `json:"rut"`
	Email     string    `json:"correo,omitempty"`
	Name      string    `json:"nombre"`
	Role      string    `json:"rol"`
	Device    string    `json:"dispositivo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest entrada para login con RUT y contraseña.
type LoginRequest struct {
	RUT      string `json:"rut" validate:"required,rut"`
	Password string `json:"password" validate:"required,min=4"`
}

// LoginResponse token JWT + usuario.
type LoginResponse struct {
	Token string       `json:"access_token"`
	User  UserResponse `json:"user"`
}
