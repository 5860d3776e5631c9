package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAnalytics returns the messaging snapshot for the authenticated company.
func (h *Handler) GetAnalytics(c *gin.Context) {
	company := currentCompany(c)

	analytics, err := h.analytics.Snapshot(c.Request.Context(), company)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"analytics": analytics,
		"company":   company,
	})
}
