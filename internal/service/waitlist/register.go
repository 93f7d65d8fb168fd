package waitlist

import (
	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
)

// Registrar ties the waitlist review endpoints into the API group
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the waitlist service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the waitlist routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	service := NewWaitlistService(r.appCtx)

	g.GET("/waitlist", service.List)
	g.GET("/waitlist/stats", service.Stats)
	g.PUT("/waitlist/:id/removal", service.SetRemoval)
}
