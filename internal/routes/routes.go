package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/controllers"
	"access-control/internal/repositories"
	"access-control/internal/services"
	"access-control/pkg/config"
	"access-control/pkg/middleware"
	"access-control/pkg/service"
)

// Deps: внешние зависимости HTTP-слоя, создаваемые в main.
type Deps struct {
	DB     *pgxpool.Pool
	Redis  *redis.Client
	JWT    service.JWTService
	Bus    services.CommandExecutor
	Config *config.Config
	Logger *zap.Logger
}

func InitRouter(e *echo.Echo, d Deps) {
	d.Logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api/v0")
	txManager := repositories.NewTxManager(d.DB)
	registry := repositories.DefaultRegistry()

	// --- 1. РЕПОЗИТОРИИ ---
	orgRepo := repositories.NewOrganizationRepository(d.DB, d.Logger)
	departmentRepo := repositories.NewDepartmentRepository(d.DB, d.Logger)
	employeeRepo := repositories.NewEmployeeRepository(d.DB, d.Logger)
	deviceRepo := repositories.NewDeviceRepository(d.DB, d.Logger)
	checkpointRepo := repositories.NewCheckpointRepository(d.DB, d.Logger)
	templateRepo := repositories.NewTemplateRepository(d.DB, d.Logger)
	loginRepo := repositories.NewLoginRepository(d.DB, d.Logger)
	entityRepo := repositories.NewEntityRepository(d.DB, registry, d.Logger)
	relationRepo := repositories.NewRelationRepository(d.DB, d.Logger)
	reportRepo := repositories.NewReportRepository(d.DB, d.Logger)
	var cacheRepo repositories.CacheRepositoryInterface
	if d.Redis != nil {
		cacheRepo = repositories.NewRedisCacheRepository(d.Redis)
	}

	// --- 2. СЕРВИСЫ ---
	policyService := services.NewPolicyService(loginRepo, cacheRepo, d.Config.Redis.PrincipalCacheTTL, d.Logger)
	authService := services.NewAuthService(loginRepo, orgRepo, policyService, d.JWT, d.Logger)
	softDelete := services.NewSoftDeleteService(txManager, entityRepo, d.Config.RestoreWindow, d.Logger)
	organizationService := services.NewOrganizationService(txManager, orgRepo, departmentRepo, d.Logger)
	departmentService := services.NewDepartmentService(txManager, departmentRepo, d.Logger)
	employeeService := services.NewEmployeeService(txManager, employeeRepo, templateRepo, relationRepo, d.Logger)
	deviceService := services.NewDeviceService(txManager, deviceRepo, entityRepo, relationRepo, d.Logger)
	checkpointService := services.NewCheckpointService(txManager, checkpointRepo, relationRepo, d.Logger)
	loginService := services.NewLoginService(txManager, loginRepo, orgRepo, policyService, d.Logger)
	relationService := services.NewRelationService(txManager, entityRepo, relationRepo, d.Logger)
	reportService := services.NewReportService(txManager, reportRepo, entityRepo, d.Logger)
	enrollmentService := services.NewEnrollmentService(txManager, d.Bus, deviceRepo, employeeRepo, templateRepo, d.Logger)
	countsService := services.NewCountsService(entityRepo, d.Logger)

	// --- 3. РОУТЕРЫ ---
	authMW := middleware.NewAuthMiddleware(d.JWT, policyService, d.Logger)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, controllers.NewAuthController(authService, countsService, d.Logger))
	runEntityRouters(secureGroup, entityControllers{
		organization: controllers.NewOrganizationController(organizationService, softDelete, d.Logger),
		department:   controllers.NewDepartmentController(departmentService, softDelete, d.Logger),
		employee:     controllers.NewEmployeeController(employeeService, softDelete, d.Logger),
		device:       controllers.NewDeviceController(deviceService, softDelete, d.Logger),
		checkpoint:   controllers.NewCheckpointController(checkpointService, softDelete, d.Logger),
		enrollment:   controllers.NewEnrollmentController(enrollmentService, d.Logger),
	})
	runLoginRouter(secureGroup, loginService, d.Logger)
	runRelationRouter(secureGroup, registry, controllers.NewRelationController(relationService, d.Logger))
	runReportRouter(secureGroup, controllers.NewReportController(reportService, d.Logger))

	d.Logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}
