package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/api/controller"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/logger"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/service/loader"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/service/metrics"
)

type APIService struct {
	router *echo.Echo
}

func (svc *APIService) Serve(addr string) {
	logger.Fatal(context.Background(), svc.router.Start(addr))
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func NewAPIService(loaderService *loader.Service, metricsService *metrics.Service) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.Use(middleware.Logger())
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{"Content-Type", "X-Api-Secret"},
	}))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(loaderService, metricsService)

	api.GET("/health", cntrl.Health)
	api.POST("/load", cntrl.Load, svc.SecretTokenMiddleware)
	api.POST("/metrics", cntrl.ComputeMetrics, svc.SecretTokenMiddleware)

	return svc, nil
}
