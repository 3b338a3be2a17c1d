package routes

import (
	"github.com/labstack/echo/v4"

	"access-control/internal/controllers"
)

func runAuthRouter(public, secure *echo.Group, ctrl *controllers.AuthController) {
	auth := public.Group("/auth")
	auth.POST("/login", ctrl.Login)
	auth.POST("/refresh", ctrl.Refresh)

	secure.GET("/whoami", ctrl.WhoAmI)
	secure.GET("/counts", ctrl.Counts)
}
