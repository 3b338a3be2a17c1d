package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/dto"
	"access-control/internal/repositories"
	"access-control/internal/services"
	"access-control/pkg/utils"
)

type DeviceController struct {
	deviceService *services.DeviceService
	softDelete          *services.SoftDeleteService
	logger              *zap.Logger
}

func NewDeviceController(service *services.DeviceService, softDelete *services.SoftDeleteService, logger *zap.Logger) *DeviceController {
	return &DeviceController{deviceService: service, softDelete: softDelete, logger: logger}
}

func (c *DeviceController) GetDevices(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, err := c.deviceService.GetDevices(ctx.Request().Context(), p, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, res.Data, res.BaseCount, res.FilteredCount, nil)
}

func (c *DeviceController) FindDevice(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.deviceService.FindDevice(ctx.Request().Context(), p, id, visibility(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.DataResponse(ctx, res, nil)
}

func (c *DeviceController) CreateDevice(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.CreateDeviceDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.deviceService.CreateDevice(ctx.Request().Context(), p, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusCreated, res)
}

func (c *DeviceController) UpdateDevice(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.UpdateDeviceDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reqCtx := ctx.Request().Context()
	res, err := patch(reqCtx, c.softDelete, p, repositories.DeviceDescriptor, id, in.SoftDeleteDTO,
		func() (*dto.DeviceDTO, error) { return c.deviceService.UpdateDevice(reqCtx, p, id, in) })
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, res)
}
