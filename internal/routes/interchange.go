package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/controllers"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
)

func runInterchangeRouter(g *echo.Group, interchangeService *services.ScheduleInterchangeService, logger *zap.Logger) {
	ctrl := controllers.NewInterchangeController(interchangeService, logger)

	g.GET("/cronogramas/:year/exportar", ctrl.ExportYear)
	g.POST("/cronogramas/:year/importar", ctrl.ImportYear)
}
