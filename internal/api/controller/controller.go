package controller

import (
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/service/loader"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/service/metrics"
)

type Controller struct {
	loader  *loader.Service
	metrics *metrics.Service
}

func NewController(loaderService *loader.Service, metricsService *metrics.Service) *Controller {
	return &Controller{loader: loaderService, metrics: metricsService}
}
