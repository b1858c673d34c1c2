package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/utils"
)

type InterchangeController struct {
	interchangeService *services.ScheduleInterchangeService
	logger             *zap.Logger
}

func NewInterchangeController(interchangeService *services.ScheduleInterchangeService, logger *zap.Logger) *InterchangeController {
	return &InterchangeController{interchangeService: interchangeService, logger: logger}
}

// ExportYear streams the yearly schedule workbook as an xlsx attachment.
func (c *InterchangeController) ExportYear(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil || year < 1 {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Año inválido", err,
				map[string]interface{}{"param": ctx.Param("year")}),
			c.logger,
		)
	}

	f, err := c.interchangeService.ExportYear(reqCtx, year)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("cronograma_%d.xlsx", year)
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

// ImportYear merges an uploaded schedule workbook into the given year.
func (c *InterchangeController) ImportYear(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil || year < 1 {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Año inválido", err,
				map[string]interface{}{"param": ctx.Param("year")}),
			c.logger,
		)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Archivo no encontrado en la solicitud", err, nil),
			c.logger,
		)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "No se pudo abrir el archivo", err, nil),
			c.logger,
		)
	}
	defer src.Close()

	result, err := c.interchangeService.ImportYear(reqCtx, src, year)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Cronograma importado", http.StatusOK)
}
