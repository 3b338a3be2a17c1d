package routes

import (
	"github.com/labstack/echo/v4"

	"access-control/internal/controllers"
)

func runReportRouter(g *echo.Group, ctrl *controllers.ReportController) {
	g.GET("/report", ctrl.GetReport)
	g.GET("/report.xlsx", ctrl.GetReportXLSX)
}
