package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/services"
	"access-control/pkg/utils"
)

// LoginController обслуживает /registrators и /controllers; роль задаётся при регистрации маршрутов.
type LoginController struct {
	loginService *services.LoginService
	role         entities.Role
	logger       *zap.Logger
}

func NewLoginController(service *services.LoginService, role entities.Role, logger *zap.Logger) *LoginController {
	return &LoginController{loginService: service, role: role, logger: logger}
}

func (c *LoginController) GetLogins(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	orgID, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, err := c.loginService.GetLogins(ctx.Request().Context(), p, c.role, orgID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, res.Data, res.BaseCount, res.FilteredCount, nil)
}

func (c *LoginController) FindLogin(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.loginService.FindLogin(ctx.Request().Context(), p, c.role, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.DataResponse(ctx, res, nil)
}

func (c *LoginController) CreateLogin(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	orgID, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.CreateLoginDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.loginService.CreateLogin(ctx.Request().Context(), p, c.role, orgID, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusCreated, res)
}

func (c *LoginController) UpdateLogin(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.UpdateLoginDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.loginService.UpdateLogin(ctx.Request().Context(), p, c.role, id, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, res)
}
