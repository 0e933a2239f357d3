package api

import (
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
)

// SecretTokenMiddleware guards the trigger endpoints with the shared secret.
// An unset secret denies everything rather than opening the routes up.
func (svc *APIService) SecretTokenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		secret := viper.GetString(constants.ViperSecretKey)
		if secret == "" || ctx.Request().Header.Get(constants.HeaderKeySecretToken) != secret {
			return constants.ErrUnauthorized
		}

		return next(ctx)
	}
}
