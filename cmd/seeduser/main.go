// seeduser crea o elimina usuarios en PostgreSQL. El RUT se valida con dígito verificador.
//
// Uso:
//
//	go run ./cmd/seeduser --rut 21.001.625-2 --password secreto [--nombre "Ana"] [--rol admin]
//	go run ./cmd/seeduser --delete --rut 21001625-2
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/skunksss/FP-Registrapp/internal/application/auth"
	"github.com/skunksss/FP-Registrapp/internal/application/dto"
	"github.com/skunksss/FP-Registrapp/internal/domain"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/postgres"
	"github.com/skunksss/FP-Registrapp/pkg/config"
)

func main() {
	var in dto.CreateUserRequest
	remove := pflag.Bool("delete", false, "eliminar el usuario en vez de crearlo")
	pflag.StringVar(&in.RUT, "rut", "", "RUT del usuario (con o sin puntos)")
	pflag.StringVar(&in.Password, "password", "", "contraseña")
	pflag.StringVar(&in.Name, "nombre", "", "nombre; por defecto el RUT formateado")
	pflag.StringVar(&in.Email, "correo", "", "correo electrónico")
	pflag.StringVar(&in.Role, "rol", "operador", "admin | operador")
	pflag.StringVar(&in.Device, "dispositivo", "", "dispositivo asignado")
	pflag.Parse()

	if err := run(*remove, in); err != nil {
		fmt.Fprintf(os.Stderr, "seeduser: %v\n", err)
		os.Exit(1)
	}
}

func run(remove bool, in dto.CreateUserRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("migraciones: %w", err)
	}

	uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{})
	if remove {
		if err := uc.DeleteUserByRUT(ctx, in.RUT); err != nil {
			return describe(err)
		}
		fmt.Printf("usuario %s eliminado\n", in.RUT)
		return nil
	}

	user, err := uc.CreateUser(ctx, in)
	if err != nil {
		return describe(err)
	}
	fmt.Printf("usuario creado: id=%d rut=%s rol=%s\n", user.ID, user.RUT, user.Role)
	return nil
}

func describe(err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, domain.ErrRUTExists):
		return errors.New("ya existe un usuario con ese RUT")
	case errors.Is(err, domain.ErrUserNotFound):
		return errors.New("no existe un usuario con ese RUT")
	}
	return err
}
