package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/dto"
	"access-control/internal/services"
	"access-control/pkg/utils"
)

// RelationController обслуживает /<master>/:id/<slave>[/add|/remove|/non-related].
// Обработчики создаются на каждую зарегистрированную связь.
type RelationController struct {
	relationService *services.RelationService
	logger          *zap.Logger
}

func NewRelationController(service *services.RelationService, logger *zap.Logger) *RelationController {
	return &RelationController{relationService: service, logger: logger}
}

func (c *RelationController) Related(master, slave string) echo.HandlerFunc {
	return func(ctx echo.Context) error { return c.list(ctx, master, slave, true) }
}

func (c *RelationController) NonRelated(master, slave string) echo.HandlerFunc {
	return func(ctx echo.Context) error { return c.list(ctx, master, slave, false) }
}

func (c *RelationController) list(ctx echo.Context, master, slave string, linked bool) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, err := c.relationService.Related(ctx.Request().Context(), p, master, id, slave, linked, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, res.Data, res.BaseCount, res.FilteredCount, nil)
}

func (c *RelationController) Add(master, slave string) echo.HandlerFunc {
	return func(ctx echo.Context) error { return c.change(ctx, master, slave, true) }
}

func (c *RelationController) Remove(master, slave string) echo.HandlerFunc {
	return func(ctx echo.Context) error { return c.change(ctx, master, slave, false) }
}

func (c *RelationController) change(ctx echo.Context, master, slave string, add bool) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.RelationIDsDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	ids, err := utils.ParseIDList(in.IDs)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	apply := c.relationService.Remove
	if add {
		apply = c.relationService.Add
	}
	res, err := apply(ctx.Request().Context(), p, master, id, slave, ids)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, res)
}
