package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skunksss/FP-Registrapp/docs"
	"github.com/skunksss/FP-Registrapp/internal/application/admin"
	"github.com/skunksss/FP-Registrapp/internal/application/auth"
	"github.com/skunksss/FP-Registrapp/internal/application/history"
	"github.com/skunksss/FP-Registrapp/internal/application/movement"
	"github.com/skunksss/FP-Registrapp/internal/domain/repository"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/memory"
	infrapdf "github.com/skunksss/FP-Registrapp/internal/infrastructure/pdf"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/postgres"
	appredis "github.com/skunksss/FP-Registrapp/internal/infrastructure/redis"
	"github.com/skunksss/FP-Registrapp/internal/infrastructure/storage/local"
	httpRouter "github.com/skunksss/FP-Registrapp/internal/interfaces/http"
	"github.com/skunksss/FP-Registrapp/pkg/config"
	"github.com/skunksss/FP-Registrapp/pkg/logger"
)

// devJWTSecret solo se usa en development cuando JWT_SECRET no está definido.
const devJWTSecret = "registrapp-dev-secret"

// @title                       Registrapp API
// @version                     1.0
// @description                 Registro de despachos y recepciones con fotos, comprobantes e historial.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío, se usa el secreto de desarrollo")
		cfg.JWT.Secret = devJWTSecret
	}

	ctx := context.Background()
	repos, closeRepos := openRepositories(ctx, cfg, log)
	defer closeRepos()

	var historyOpts []history.Option
	if cfg.History.StoragePagination {
		historyOpts = append(historyOpts, history.WithStoragePagination())
	}
	engine := history.NewEngine(repos.movements, historyOpts...)

	movementUC := movement.NewUseCase(
		repos.movements, repos.photos, repos.users, repos.tx,
		local.New(cfg.Upload.Dir),
		infrapdf.NewReceiptGenerator(cfg.App.Name),
		movement.WithMaxPhotoBytes(cfg.Upload.MaxBytes),
	)
	authUC := auth.NewAuthUseCase(repos.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	adminUC := admin.NewAdminUseCase(repos.users, repos.movements, engine, movementUC)

	// Rate limit compartido entre instancias cuando hay Redis.
	var limiterStorage fiber.Storage
	if cfg.Redis.URL != "" {
		rdb, err := appredis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		storage := appredis.NewStorage(rdb, "registrapp:limiter:")
		defer storage.Close()
		limiterStorage = storage
		log.Info().Msg("rate limiter sobre Redis")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1<<20,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http").Zerolog()))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Title = cfg.App.Name + " API"
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    docs.SwaggerInfo.Title,
		}))
	} else {
		log.Warn().Msg("docs/swagger.json no encontrado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		MovementUC:     movementUC,
		History:        engine,
		AdminUC:        adminUC,
		JWTSecret:      cfg.JWT.Secret,
		AppName:        cfg.App.Name,
		LimiterStorage: limiterStorage,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

type repositories struct {
	users     repository.UserRepository
	movements repository.MovementRepository
	photos    repository.PhotoRepository
	tx        movement.TxRunner
}

// openRepositories abre PostgreSQL (aplicando migraciones) o la persistencia en memoria según DB_DRIVER.
func openRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (repositories, func()) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		movements := memory.NewMovementRepository()
		photos := memory.NewPhotoRepository()
		return repositories{
			users:     memory.NewUserRepository(),
			movements: movements,
			photos:    photos,
			tx:        memory.NewTxRunner(movements, photos),
		}, func() {}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("migraciones")
	}
	return postgresRepositories(pool), pool.Close
}

func postgresRepositories(pool *pgxpool.Pool) repositories {
	return repositories{
		users:     postgres.NewUserRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		photos:    postgres.NewPhotoRepository(pool),
		tx:        postgres.NewTxRunner(pool),
	}
}
