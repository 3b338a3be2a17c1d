package routes

import (
	"github.com/labstack/echo/v4"

	"access-control/internal/controllers"
	"access-control/internal/repositories"
)

// runRelationRouter регистрирует статические пути для каждой связи реестра.
func runRelationRouter(g *echo.Group, registry *repositories.Registry, ctrl *controllers.RelationController) {
	for _, rel := range registry.Relations() {
		master, slave := rel.Master.Name, rel.Slave.Name
		base := "/" + master + "/:id/" + slave
		g.GET(base, ctrl.Related(master, slave))
		g.GET(base+"/non-related", ctrl.NonRelated(master, slave))
		g.POST(base+"/add", ctrl.Add(master, slave))
		g.POST(base+"/remove", ctrl.Remove(master, slave))
	}
}
