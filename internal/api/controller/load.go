package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Load runs a full catalog load cycle, then recomputes today's metrics over
// the fresh state.
func (c *Controller) Load(ctx echo.Context) error {
	res, err := c.loader.Load(ctx.Request().Context())
	if err != nil {
		return err
	}

	if err := c.metrics.Compute(ctx.Request().Context(), time.Now().UTC()); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, res)
}
