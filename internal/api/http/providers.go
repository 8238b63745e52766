package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/deskfolio/internal/providers/contact"
	"github.com/GriffinCanCode/deskfolio/internal/shared/utils"
)

// SendContact relays a contact form submission
func (h *Handlers) SendContact(c *gin.Context) {
	var msg contact.Message
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxMessageSize)
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.relay.Send(c.Request.Context(), msg)
	status := contact.StatusFor(err)
	if h.metrics != nil {
		result := status
		if err != nil && status != contact.StatusFailed {
			result = "invalid"
		}
		h.metrics.RecordContact(result)
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"status": status,
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// GetWeather returns the latest cached weather report
func (h *Handlers) GetWeather(c *gin.Context) {
	report, err := h.weather.Latest()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
