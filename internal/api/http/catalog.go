package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/shared/utils"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// ListApps lists the catalog
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apps": h.catalog.List(),
		"dock": dockIDs(h.catalog.Dock()),
	})
}

// GetApp returns one app's metadata
func (h *Handlers) GetApp(c *gin.Context) {
	appID := c.Param("id")
	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, ok := h.catalog.Get(appID)
	if !ok {
		h.fail(c, catalog.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, app)
}

// GetAppContent returns the payload hosted in an app's window.
// Clients revalidate with If-None-Match.
func (h *Handlers) GetAppContent(c *gin.Context) {
	appID := c.Param("id")
	if err := utils.ValidateAppID(appID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.catalog.Content(appID)
	if err != nil {
		h.fail(c, err)
		return
	}

	etag := utils.ETag(appID, payload.ContentType, payload.Body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id":  appID,
		"content": payload,
	})
}

// Search finds apps matching the q parameter
func (h *Handlers) Search(c *gin.Context) {
	q := c.Query("q")
	if err := utils.ValidateQuery(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSearchLimit)
	}

	hits := h.catalog.Search(q, limit)
	if hits == nil {
		hits = []catalog.Hit{}
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   q,
		"results": hits,
	})
}

func dockIDs(apps []catalog.App) []string {
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	return ids
}
