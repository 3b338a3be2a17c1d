package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/controllers"
	"access-control/internal/entities"
	"access-control/internal/services"
)

// runLoginRouter регистрирует /organizations/:id/<роль> для списка и создания, /<роль>/:id для остального.
func runLoginRouter(g *echo.Group, loginService *services.LoginService, logger *zap.Logger) {
	for path, role := range map[string]entities.Role{
		"registrators": entities.RoleRegistrator,
		"controllers":  entities.RoleController,
	} {
		ctrl := controllers.NewLoginController(loginService, role, logger)
		g.GET("/organizations/:id/"+path, ctrl.GetLogins)
		g.POST("/organizations/:id/"+path, ctrl.CreateLogin)
		g.GET("/"+path+"/:id", ctrl.FindLogin)
		g.PATCH("/"+path+"/:id", ctrl.UpdateLogin)
	}
}
