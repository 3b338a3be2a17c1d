package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/dto"
	"access-control/internal/report"
	"access-control/internal/services"
	"access-control/pkg/utils"
)

type ReportController struct {
	reportService *services.ReportService
	logger        *zap.Logger
}

func NewReportController(service *services.ReportService, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: service, logger: logger}
}

const reportTimeout = 2 * time.Minute

func (c *ReportController) build(ctx echo.Context) (*services.ReportResult, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	var q dto.ReportQueryDTO
	if err := bindValid(ctx, &q); err != nil {
		return nil, err
	}
	reqCtx, cancel := utils.ContextWithTimeout(ctx, reportTimeout)
	defer cancel()
	return c.reportService.Build(reqCtx, p, q)
}

func (c *ReportController) GetReport(ctx echo.Context) error {
	res, err := c.build(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, res.DTO())
}

// GetReportXLSX отдаёт ту же страницу отчёта книгой Excel.
func (c *ReportController) GetReportXLSX(ctx echo.Context) error {
	res, err := c.build(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	name := res.FileName(time.Now())
	h := ctx.Response().Header()
	h.Set(echo.HeaderContentType, report.XLSXContentType)
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name)))
	ctx.Response().WriteHeader(http.StatusOK)
	if err := res.WriteXLSX(ctx.Response()); err != nil {
		c.logger.Error("Ошибка записи XLSX отчёта", zap.String("file", name), zap.Error(err))
		return err
	}
	return nil
}
