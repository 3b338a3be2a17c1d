package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/repositories"
	"access-control/internal/services"
	"access-control/pkg/types"
	"access-control/pkg/utils"
)

// principal достаёт принципала, положенного в контекст AuthMiddleware.
func principal(ctx echo.Context) (authz.Principal, error) {
	return authz.FromContext(ctx.Request().Context())
}

func idParam(ctx echo.Context, name string) (int64, error) {
	return utils.ParseInt64Param(ctx.Param(name))
}

// bindValid читает тело (или query) и проверяет validate-теги.
func bindValid(ctx echo.Context, dst interface{}) error {
	if err := ctx.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Неверное тело запроса")
	}
	return ctx.Validate(dst)
}

func visibility(ctx echo.Context) types.Visibility {
	return utils.ParseFilterFromQuery(ctx.Request().URL.Query()).Visibility
}

// patch переключает мягкое удаление по delete/restore в теле, иначе вызывает update.
func patch[T any](
	ctx context.Context,
	softDelete *services.SoftDeleteService,
	p authz.Principal,
	d *repositories.EntityDescriptor,
	id int64,
	sd dto.SoftDeleteDTO,
	update func() (T, error),
) (interface{}, error) {
	if sd.Requested() {
		return softDelete.Apply(ctx, p, d, id, sd)
	}
	return update()
}
