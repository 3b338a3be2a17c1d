package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/dto"
	"access-control/internal/services"
	"access-control/pkg/utils"
)

type AuthController struct {
	authService   *services.AuthService
	countsService *services.CountsService
	logger        *zap.Logger
}

func NewAuthController(authService *services.AuthService, countsService *services.CountsService, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, countsService: countsService, logger: logger}
}

func (c *AuthController) Login(ctx echo.Context) error {
	var in dto.LoginDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.authService.Login(ctx.Request().Context(), in)
	if err != nil {
		c.logger.Warn("Неудачная попытка входа", zap.String("login", in.Login), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (c *AuthController) Refresh(ctx echo.Context) error {
	var in dto.RefreshTokenDTO
	if err := bindValid(ctx, &in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.authService.Refresh(ctx.Request().Context(), in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (c *AuthController) WhoAmI(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.authService.WhoAmI(ctx.Request().Context(), p)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.DataResponse(ctx, res, nil)
}

func (c *AuthController) Counts(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.countsService.Counts(ctx.Request().Context(), p)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.DataResponse(ctx, res, nil)
}
