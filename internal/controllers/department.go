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

type DepartmentController struct {
	departmentService *services.DepartmentService
	softDelete          *services.SoftDeleteService
	logger              *zap.Logger
}

func NewDepartmentController(service *services.DepartmentService, softDelete *services.SoftDeleteService, logger *zap.Logger) *DepartmentController {
	return &DepartmentController{departmentService: service, softDelete: softDelete, logger: logger}
}

func (c *DepartmentController) GetDepartments(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, err := c.departmentService.GetDepartments(ctx.Request().Context(), p, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, res.Data, res.BaseCount, res.FilteredCount, nil)
}

func (c *DepartmentController) FindDepartment(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.departmentService.FindDepartment(ctx.Request().Context(), p, id, visibility(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.DataResponse(ctx, res, nil)
}

func (c *DepartmentController) CreateDepartment(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.CreateDepartmentDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.departmentService.CreateDepartment(ctx.Request().Context(), p, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusCreated, res)
}

func (c *DepartmentController) UpdateDepartment(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.UpdateDepartmentDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reqCtx := ctx.Request().Context()
	res, err := patch(reqCtx, c.softDelete, p, repositories.DepartmentDescriptor, id, in.SoftDeleteDTO,
		func() (*dto.DepartmentDTO, error) { return c.departmentService.UpdateDepartment(reqCtx, p, id, in) })
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, res)
}
