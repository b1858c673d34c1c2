package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/routes"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/scheduler"
	"github.com/SimicsGroupSAS/GestLog-sub001/migrations"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/config"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/database/postgresql"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	applogger "github.com/SimicsGroupSAS/GestLog-sub001/pkg/logger"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/utils"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/validation"
)

func main() {
	logger := applogger.NewLogger()
	defer logger.Sync()

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := postgresql.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("no se pudo conectar a PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		logger.Fatal("no se pudieron aplicar las migraciones", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("no se pudo conectar a Redis", zap.Error(err),
			zap.String("address", cfg.Redis.Address))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recuperado",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Error interno del servidor", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{"Content-Disposition"},
	}))

	deps := routes.InitRouter(e, dbConn, redisClient, logger, cfg)

	cronSvc := scheduler.New(deps.Orchestrator, cfg.Plan.EnsureSpec, logger)
	if err := cronSvc.Start(ctx); err != nil {
		logger.Fatal("no se pudo iniciar el planificador", zap.Error(err))
	}
	defer cronSvc.Stop()

	go func() {
		<-ctx.Done()
		logger.Info("apagando el servidor")
		if err := e.Shutdown(context.Background()); err != nil {
			logger.Error("error al apagar el servidor", zap.Error(err))
		}
	}()

	logger.Info("servidor iniciado", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
		logger.Fatal("error al iniciar el servidor", zap.Error(err))
	}
}

func runMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
