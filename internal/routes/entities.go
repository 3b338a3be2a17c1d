package routes

import (
	"github.com/labstack/echo/v4"

	"access-control/internal/controllers"
)

type entityControllers struct {
	organization *controllers.OrganizationController
	department   *controllers.DepartmentController
	employee     *controllers.EmployeeController
	device       *controllers.DeviceController
	checkpoint   *controllers.CheckpointController
	enrollment   *controllers.EnrollmentController
}

func runEntityRouters(g *echo.Group, c entityControllers) {
	g.GET("/organizations", c.organization.GetOrganizations)
	g.POST("/organizations", c.organization.CreateOrganization)
	g.GET("/organizations/:id", c.organization.FindOrganization)
	g.PATCH("/organizations/:id", c.organization.UpdateOrganization)

	g.GET("/departments", c.department.GetDepartments)
	g.POST("/departments", c.department.CreateDepartment)
	g.GET("/departments/:id", c.department.FindDepartment)
	g.PATCH("/departments/:id", c.department.UpdateDepartment)

	g.GET("/employees", c.employee.GetEmployees)
	g.POST("/employees", c.employee.CreateEmployee)
	g.GET("/employees/:id", c.employee.FindEmployee)
	g.PATCH("/employees/:id", c.employee.UpdateEmployee)
	g.GET("/employees/:id/photo", c.employee.GetPhoto)
	g.POST("/employees/:id/enroll", c.enrollment.Enroll)

	g.GET("/devices", c.device.GetDevices)
	g.POST("/devices", c.device.CreateDevice)
	g.GET("/devices/:id", c.device.FindDevice)
	g.PATCH("/devices/:id", c.device.UpdateDevice)
	g.POST("/devices/:id/search", c.enrollment.Search)

	g.GET("/checkpoints", c.checkpoint.GetCheckpoints)
	g.POST("/checkpoints", c.checkpoint.CreateCheckpoint)
	g.GET("/checkpoints/:id", c.checkpoint.FindCheckpoint)
	g.PATCH("/checkpoints/:id", c.checkpoint.UpdateCheckpoint)
}
