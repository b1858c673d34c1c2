package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/controllers"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
)

func runHistoricalRouter(g *echo.Group, importService *services.HistoricalImportService, logger *zap.Logger) {
	ctrl := controllers.NewHistoricalController(importService, logger)

	g.POST("/historico/importar", ctrl.Import)
}
