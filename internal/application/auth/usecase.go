package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/application/validation"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/domain/entity"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
	"github.com/skunksss/FP-Registrapp/pkg/jwt"
	"github.com/skunksss/FP-Registrapp/pkg/rut"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación y provisión de usuarios.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// CreateUser crea un usuario: valida el RUT, hashea password con bcrypt y persiste.
// Devuelve domain.ErrRUTExists si el RUT ya está registrado.
func (uc *AuthUseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	r, err := rut.Validate(in.RUT)
	if err != nil {
		return nil, domain.NewValidationError("rut", validation.RUTMessage(in.RUT))
	}
	existing, err := uc.userRepo.GetByRUT(ctx, r.String())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrRUTExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = entity.RoleOperador
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = r.Formatted()
	}
	now := time.Now().UTC()
	user := &entity.User{
		RUT:          r.String(),
		Email:        strings.TrimSpace(in.Email),
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		Device:       strings.TrimSpace(in.Device),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// DeleteUserByRUT elimina un usuario por RUT (con o sin puntos).
func (uc *AuthUseCase) DeleteUserByRUT(ctx context.Context, raw string) error {
	r, err := rut.Validate(raw)
	if err != nil {
		return domain.NewValidationError("rut", validation.RUTMessage(raw))
	}
	user, err := uc.userRepo.GetByRUT(ctx, r.String())
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return uc.userRepo.Delete(ctx, user.ID)
}

// Login verifica RUT/password, genera JWT y retorna token + usuario.
// RUT inexistente y password incorrecta responden igual (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	r, err := rut.Validate(in.RUT)
	if err != nil {
		return nil, domain.NewValidationError("rut", validation.RUTMessage(in.RUT))
	}
	user, err := uc.userRepo.GetByRUT(ctx, r.String())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// Me devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		RUT:       u.RUT,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Device:    u.Device,
		CreatedAt: u.CreatedAt,
	}
}
