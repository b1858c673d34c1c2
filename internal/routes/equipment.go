package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/controllers"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
)

func runEquipmentRouter(g *echo.Group, equipmentService *services.EquipmentService, logger *zap.Logger) {
	ctrl := controllers.NewEquipmentController(equipmentService, logger)

	g.GET("/equipos", ctrl.List)
	g.GET("/equipos/:code", ctrl.Get)
	g.POST("/equipos", ctrl.Create)
	g.PUT("/equipos/:code", ctrl.Update)
	g.PATCH("/equipos/:code/baja", ctrl.Retire)
	g.DELETE("/equipos/:code", ctrl.Delete)
}
