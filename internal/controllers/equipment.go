package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/dto"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/utils"
)

type EquipmentController struct {
	equipmentService *services.EquipmentService
	logger           *zap.Logger
}

func NewEquipmentController(equipmentService *services.EquipmentService, logger *zap.Logger) *EquipmentController {
	return &EquipmentController{equipmentService: equipmentService, logger: logger}
}

func (c *EquipmentController) List(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	list, total, err := c.equipmentService.List(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, list, "Lista de equipos", http.StatusOK, total)
}

func (c *EquipmentController) Get(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	eq, err := c.equipmentService.Get(reqCtx, ctx.Param("code"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, eq, "Equipo encontrado", http.StatusOK)
}

func (c *EquipmentController) Create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var in dto.CreateEquipmentDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	eq, err := c.equipmentService.Create(reqCtx, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, eq, "Equipo registrado", http.StatusCreated)
}

func (c *EquipmentController) Update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var in dto.UpdateEquipmentDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	eq, err := c.equipmentService.Update(reqCtx, ctx.Param("code"), in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, eq, "Equipo actualizado", http.StatusOK)
}

func (c *EquipmentController) Retire(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var in dto.RetireEquipmentDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	eq, err := c.equipmentService.Retire(reqCtx, ctx.Param("code"), in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, eq, "Equipo dado de baja", http.StatusOK)
}

func (c *EquipmentController) Delete(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	if err := c.equipmentService.Delete(reqCtx, ctx.Param("code")); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Equipo eliminado", http.StatusOK)
}
