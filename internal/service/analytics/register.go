package analytics

import (
	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
)

// Registrar ties the analytics endpoints into the API group
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the analytics service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the analytics routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	service := NewAnalyticsService(r.appCtx)

	g.GET("/analytics/matches", service.Matches)
	g.GET("/analytics/funnel", service.Funnel)
	g.GET("/analytics/daily", service.Daily)
	g.POST("/actions", service.IngestActions)
}
