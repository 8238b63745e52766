package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every REST route on r. contactGuard runs in front of the
// contact endpoint only.
func (h *Handlers) Register(r gin.IRouter, contactGuard ...gin.HandlerFunc) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	// Desktops
	r.POST("/desktops", h.CreateDesktop)
	r.GET("/desktops", h.ListDesktops)
	r.GET("/desktops/:id", h.GetDesktop)
	r.DELETE("/desktops/:id", h.DeleteDesktop)
	r.POST("/desktops/:id/commands", h.DispatchCommand)

	// Catalog
	r.GET("/apps", h.ListApps)
	r.GET("/apps/:id", h.GetApp)
	r.GET("/apps/:id/content", h.GetAppContent)
	r.GET("/search", h.Search)

	// Providers
	r.POST("/contact", append(contactGuard, h.SendContact)...)
	r.GET("/weather", h.GetWeather)
}
