package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/controllers"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
)

func runPlanRouter(g *echo.Group, planService *services.PlanService, logger *zap.Logger) {
	ctrl := controllers.NewPlanController(planService, logger)

	g.GET("/plan/:year", ctrl.WeeklyPlan)
}
