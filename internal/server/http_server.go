package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wavelength/matchops/internal/config"
	"github.com/wavelength/matchops/internal/metrics"
	"github.com/wavelength/matchops/internal/validators"
)

// Registrar is a common interface for all API feature registrars
type Registrar interface {
	Register(g *echo.Group)
}

// NewEcho builds the configured echo instance with global middleware,
// health/metrics endpoints, and all feature routes mounted under
// /api/v1 behind admin-token auth.
func NewEcho(cfg *config.Config, registrars ...Registrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.New()

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	metrics.MustRegister(prometheus.DefaultRegisterer)
	e.Use(metrics.Middleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api/v1")
	api.Use(AdminAuth(cfg))

	for _, r := range registrars {
		r.Register(api)
	}

	return e
}

// StartHTTPServer boots the admin API and blocks until it exits.
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	e := NewEcho(cfg, registrars...)
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return e.Start(addr)
}
