package users

import (
	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
)

// Registrar ties the user ops endpoints into the API group
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the users service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the user ops routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	service := NewUsersService(r.appCtx)

	g.GET("/users", service.List)
	g.GET("/users/removed", service.ListRemoved)
	g.GET("/users/:id", service.Get)
	g.PUT("/users/:id/attractiveness", service.SetAttractiveness)
	g.PUT("/users/:id/removal", service.SetRemoval)
	g.POST("/users/segments/check", service.CheckSegment)
}
