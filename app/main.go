// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"access-control/internal/routes"
	"access-control/pkg/config"
	"access-control/pkg/database/postgresql"
	"access-control/pkg/devicebus"
	apperrors "access-control/pkg/errors"
	applogger "access-control/pkg/logger"
	"access-control/pkg/middleware"
	"access-control/pkg/service"
	"access-control/pkg/utils"
	"access-control/pkg/validation"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	e.Use(middleware.InjectLogger(logger))
	e.Use(middleware.RequestLogger(logger))

	ctx := context.Background()

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.MigrateOnStart {
		if err := postgresql.Migrate(ctx, dbConn, cfg.Postgres.MigrationsTable, logger); err != nil {
			logger.Fatal("не удалось применить миграции", zap.Error(err))
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		// без Redis принципал читается из базы на каждый запрос
		logger.Warn("Redis недоступен, кеш принципалов отключён", zap.Error(err), zap.String("address", cfg.Redis.Address))
		_ = redisClient.Close()
		redisClient = nil
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)

	bus := devicebus.NewClient(devicebus.Config{
		InPrefix:        cfg.MQTT.InPrefix,
		OutPrefix:       cfg.MQTT.OutPrefix,
		ConnectAttempts: cfg.MQTT.ConnectAttempts,
		LoopTicks:       cfg.MQTT.LoopTicks,
		Tick:            cfg.MQTT.Tick,
		RetryDelay:      time.Second,
	}, devicebus.NewMQTTDialer(cfg.MQTT.Host, cfg.MQTT.Port, cfg.MQTT.Username, cfg.MQTT.Password), logger)

	routes.InitRouter(e, routes.Deps{
		DB:     dbConn,
		Redis:  redisClient,
		JWT:    jwtSvc,
		Bus:    bus,
		Config: cfg,
		Logger: logger,
	})

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logger.Info("Сервер остановлен")
}
