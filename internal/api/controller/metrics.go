package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type computeMetricsRequest struct {
	// Date overrides the snapshot date, mostly for backfills.
	Date string `json:"date" query:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (c *Controller) ComputeMetrics(ctx echo.Context) error {
	var req computeMetricsRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	at := time.Now().UTC()
	if req.Date != "" {
		var err error
		at, err = time.Parse(time.DateOnly, req.Date)
		if err != nil {
			return err
		}
	}

	if err := c.metrics.Compute(ctx.Request().Context(), at); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]string{"date": at.Format(time.DateOnly)})
}
