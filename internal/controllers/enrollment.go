package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/dto"
	"access-control/internal/services"
	"access-control/pkg/utils"
)

type EnrollmentController struct {
	enrollmentService *services.EnrollmentService
	logger            *zap.Logger
}

func NewEnrollmentController(service *services.EnrollmentService, logger *zap.Logger) *EnrollmentController {
	return &EnrollmentController{enrollmentService: service, logger: logger}
}

// Enroll держит запрос до ответа устройства или исчерпания тиков.
func (c *EnrollmentController) Enroll(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.EnrollDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.enrollmentService.Enroll(ctx.Request().Context(), p, id, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (c *EnrollmentController) Search(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.SearchDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса"), c.logger)
	}
	in.Device = id
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.enrollmentService.Search(ctx.Request().Context(), p, id, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, res)
}
