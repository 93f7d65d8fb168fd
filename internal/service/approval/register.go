package approval

import (
	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
)

// Registrar ties the approval workflow endpoints into the API group
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the approval service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the approval routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	service := NewApprovalService(r.appCtx)

	g.GET("/profiles/pending", service.ListPending)
	g.GET("/profiles/approved", service.ListApproved)
	g.GET("/profiles/counts", service.Counts)
	g.POST("/profiles/:id/approve", service.Approve)
	g.POST("/profiles/:id/undo", service.Undo)
}
