package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/listeners"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/config"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/eventbus"
)

// Deps holds the wired service graph so main can hand pieces
// (the orchestrator, the bus) to the cron scheduler.
type Deps struct {
	Bus          *eventbus.Bus
	Orchestrator *services.ScheduleOrchestrator
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, logger *zap.Logger, cfg *config.Config) *Deps {
	logger.Info("InitRouter: registrando rutas")

	api := e.Group("/api")
	bus := eventbus.New(logger)

	// --- repositorios ---
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	scheduleRepo := repositories.NewScheduleRepository(dbConn)
	followUpRepo := repositories.NewFollowUpRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- servicios ---
	orchestrator := services.NewScheduleOrchestrator(equipmentRepo, scheduleRepo, bus, logger)
	reconciler := services.NewFollowUpReconciler(scheduleRepo, followUpRepo, orchestrator, bus, logger)
	equipmentService := services.NewEquipmentService(equipmentRepo, scheduleRepo, orchestrator, reconciler, bus, logger)
	followUpService := services.NewFollowUpService(equipmentRepo, followUpRepo, bus, logger)
	planService := services.NewPlanService(scheduleRepo, followUpRepo, cacheRepo, cfg.Plan.CacheTTL, logger)
	interchangeService := services.NewScheduleInterchangeService(equipmentRepo, scheduleRepo, reconciler, bus, logger)
	historicalService := services.NewHistoricalImportService(equipmentRepo, scheduleRepo, followUpRepo, bus, logger)

	// --- listeners ---
	listeners.NewPlanCacheListener(cacheRepo, logger).Register(bus)

	// --- routers ---
	runEquipmentRouter(api, equipmentService, logger)
	runFollowUpRouter(api, followUpService, logger)
	runPlanRouter(api, planService, logger)
	runInterchangeRouter(api, interchangeService, logger)
	runHistoricalRouter(api, historicalService, logger)

	logger.Info("InitRouter: rutas registradas")
	return &Deps{Bus: bus, Orchestrator: orchestrator}
}
