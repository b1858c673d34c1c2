package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/dto"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/utils"
)

type FollowUpController struct {
	followUpService *services.FollowUpService
	logger          *zap.Logger
}

func NewFollowUpController(followUpService *services.FollowUpService, logger *zap.Logger) *FollowUpController {
	return &FollowUpController{followUpService: followUpService, logger: logger}
}

func (c *FollowUpController) ListByEquipment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	list, err := c.followUpService.ListByCode(reqCtx, ctx.Param("code"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, list, "Seguimientos del equipo", http.StatusOK)
}

func (c *FollowUpController) RegisterExecution(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "ID de seguimiento inválido", err,
				map[string]interface{}{"param": ctx.Param("id")}),
			c.logger,
		)
	}

	var in dto.RegisterExecutionDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fu, err := c.followUpService.RegisterExecution(reqCtx, id, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, fu, "Ejecución registrada", http.StatusOK)
}

func (c *FollowUpController) CreateCorrective(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var in dto.CreateCorrectiveDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fu, err := c.followUpService.CreateCorrective(reqCtx, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, fu, "Mantenimiento correctivo registrado", http.StatusCreated)
}
