package chats

import (
	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
)

// Registrar ties the chat transcript endpoints into the API group
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the chats service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the chat routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	service := NewChatsService(r.appCtx)

	g.GET("/users/:id/chats", service.ListSessions)
	g.GET("/chats/:id/messages", service.Messages)
}
