package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/services"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/utils"
)

type HistoricalController struct {
	importService *services.HistoricalImportService
	logger        *zap.Logger
}

func NewHistoricalController(importService *services.HistoricalImportService, logger *zap.Logger) *HistoricalController {
	return &HistoricalController{importService: importService, logger: logger}
}

// Import merges an uploaded workbook of historical maintenance records.
func (c *HistoricalController) Import(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

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

	result, err := c.importService.ImportFile(reqCtx, src)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Histórico importado", http.StatusOK)
}
