package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
)

type Binder struct {
	binder echo.DefaultBinder
}

func NewBinder() *Binder {
	return &Binder{}
}

// Bind also binds query params on mutating methods, which the default binder
// reserves for GET and DELETE.
func (b *Binder) Bind(i any, c echo.Context) error {
	if err := b.binder.Bind(i, c); err != nil {
		return constants.NewCodedError(err.Error(), http.StatusBadRequest)
	}
	if err := b.binder.BindQueryParams(c, i); err != nil {
		return constants.NewCodedError(err.Error(), http.StatusBadRequest)
	}
	return nil
}
