package outreach

import (
	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
)

// Registrar ties the outreach endpoints into the API group
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the outreach service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the outreach routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	service := NewOutreachService(r.appCtx)

	g.POST("/outreach/batches", service.CreateBatches)
}
