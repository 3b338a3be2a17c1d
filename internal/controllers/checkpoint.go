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

type CheckpointController struct {
	checkpointService *services.CheckpointService
	softDelete          *services.SoftDeleteService
	logger              *zap.Logger
}

func NewCheckpointController(service *services.CheckpointService, softDelete *services.SoftDeleteService, logger *zap.Logger) *CheckpointController {
	return &CheckpointController{checkpointService: service, softDelete: softDelete, logger: logger}
}

func (c *CheckpointController) GetCheckpoints(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, err := c.checkpointService.GetCheckpoints(ctx.Request().Context(), p, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, res.Data, res.BaseCount, res.FilteredCount, nil)
}

func (c *CheckpointController) FindCheckpoint(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.checkpointService.FindCheckpoint(ctx.Request().Context(), p, id, visibility(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.DataResponse(ctx, res, nil)
}

func (c *CheckpointController) CreateCheckpoint(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.CreateCheckpointDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.checkpointService.CreateCheckpoint(ctx.Request().Context(), p, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusCreated, res)
}

func (c *CheckpointController) UpdateCheckpoint(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.UpdateCheckpointDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reqCtx := ctx.Request().Context()
	res, err := patch(reqCtx, c.softDelete, p, repositories.CheckpointDescriptor, id, in.SoftDeleteDTO,
		func() (*dto.CheckpointDTO, error) { return c.checkpointService.UpdateCheckpoint(reqCtx, p, id, in) })
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, res)
}
