package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/controllers"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
)

func runFollowUpRouter(g *echo.Group, followUpService *services.FollowUpService, logger *zap.Logger) {
	ctrl := controllers.NewFollowUpController(followUpService, logger)

	g.GET("/equipos/:code/seguimientos", ctrl.ListByEquipment)
	g.PATCH("/seguimientos/:id/ejecucion", ctrl.RegisterExecution)
	g.POST("/seguimientos/correctivos", ctrl.CreateCorrective)
}
