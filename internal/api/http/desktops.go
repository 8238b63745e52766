package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/shared/utils"
)

// CreateDesktop starts a new locked desktop. The body is optional.
func (h *Handlers) CreateDesktop(c *gin.Context) {
	var vp window.Viewport
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxCommandSize)
	if err := c.ShouldBindJSON(&vp); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if vp.Width < 0 || vp.Height < 0 || vp.TopBar < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewport dimensions must not be negative"})
		return
	}

	d, err := h.desktops.Create(vp)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d.View())
}

// ListDesktops lists desktop ids and registry stats
func (h *Handlers) ListDesktops(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"desktops": h.desktops.List(),
		"stats":    h.desktops.Stats(),
	})
}

// GetDesktop returns a desktop's current view
func (h *Handlers) GetDesktop(c *gin.Context) {
	d, err := h.desktops.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d.View())
}

// DeleteDesktop stops and drops a desktop
func (h *Handlers) DeleteDesktop(c *gin.Context) {
	id := c.Param("id")
	if err := h.desktops.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}

// DispatchCommand applies one command and returns the resulting view.
// Refused commands still carry the unchanged view.
func (h *Handlers) DispatchCommand(c *gin.Context) {
	d, err := h.desktops.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var cmd desktop.Command
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxCommandSize)
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := d.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error": err.Error(),
			"view":  view,
		})
		return
	}
	c.JSON(http.StatusOK, view)
}
