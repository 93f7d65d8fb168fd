package images

import (
	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
)

// Registrar ties the image management endpoints into the API group
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the images service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the image routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	service := NewImagesService(r.appCtx)

	g.GET("/users/:id/images", service.List)
	g.POST("/users/:id/images", service.Upload)
	g.DELETE("/users/:id/images", service.Delete)
	g.PUT("/users/:id/collage", service.ReplaceCollage)
}
