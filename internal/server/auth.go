package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/wavelength/matchops/internal/config"
)

// AdminAuth guards the API with the operator credential from the
// environment. ADMIN_TOKEN_HASH (bcrypt) wins over the plain
// ADMIN_TOKEN when both are set. With neither set, access is open;
// that matches local development against a seeded database.
func AdminAuth(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Admin.Token == "" && cfg.Admin.TokenHash == "" {
				return next(c)
			}

			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing admin token")
			}

			if cfg.Admin.TokenHash != "" {
				if bcrypt.CompareHashAndPassword([]byte(cfg.Admin.TokenHash), []byte(token)) != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin token")
				}
				return next(c)
			}

			if subtle.ConstantTimeCompare([]byte(cfg.Admin.Token), []byte(token)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin token")
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
