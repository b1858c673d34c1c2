package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/utils"
)

type PlanController struct {
	planService *services.PlanService
	logger      *zap.Logger
}

func NewPlanController(planService *services.PlanService, logger *zap.Logger) *PlanController {
	return &PlanController{planService: planService, logger: logger}
}

func (c *PlanController) WeeklyPlan(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil || year < 1 {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Año inválido", err,
				map[string]interface{}{"param": ctx.Param("year")}),
			c.logger,
		)
	}

	plan, err := c.planService.WeeklyPlan(reqCtx, year)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, plan, "Plan semanal de mantenimiento", http.StatusOK)
}
