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

type EmployeeController struct {
	employeeService *services.EmployeeService
	softDelete          *services.SoftDeleteService
	logger              *zap.Logger
}

func NewEmployeeController(service *services.EmployeeService, softDelete *services.SoftDeleteService, logger *zap.Logger) *EmployeeController {
	return &EmployeeController{employeeService: service, softDelete: softDelete, logger: logger}
}

func (c *EmployeeController) GetEmployees(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, err := c.employeeService.GetEmployees(ctx.Request().Context(), p, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, res.Data, res.BaseCount, res.FilteredCount, nil)
}

func (c *EmployeeController) FindEmployee(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reqCtx := ctx.Request().Context()
	res, err := c.employeeService.FindEmployee(reqCtx, p, id, visibility(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	extra, err := c.employeeService.EmployeeExtra(reqCtx, p, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.DataResponse(ctx, res, map[string]interface{}{"extra": extra})
}

func (c *EmployeeController) CreateEmployee(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.CreateEmployeeDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.employeeService.CreateEmployee(ctx.Request().Context(), p, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusCreated, res)
}

func (c *EmployeeController) UpdateEmployee(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.UpdateEmployeeDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reqCtx := ctx.Request().Context()
	res, err := patch(reqCtx, c.softDelete, p, repositories.EmployeeDescriptor, id, in.SoftDeleteDTO,
		func() (*dto.EmployeeDTO, error) { return c.employeeService.UpdateEmployee(reqCtx, p, id, in) })
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, res)
}

// GetPhoto отдаёт последний живой AVATAR как JPEG.
func (c *EmployeeController) GetPhoto(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	photo, err := c.employeeService.GetPhoto(ctx.Request().Context(), p, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.Blob(http.StatusOK, "image/jpeg", photo)
}
