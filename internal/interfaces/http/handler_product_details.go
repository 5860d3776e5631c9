package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instadm/internal/entities"
)

type productDetailsRequest struct {
	CompanyInstagramID string `json:"company_instagram_id"`
	Details            string `json:"details"`
}

func (h *Handler) CreateProductDetails(c *gin.Context) {
	var req productDetailsRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	details, err := h.productDetails.Create(c.Request.Context(), req.CompanyInstagramID, SanitizeString(req.Details))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": details})
}

func (h *Handler) ListProductDetails(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items, pagination, err := h.productDetails.List(c.Request.Context(), c.Query("company_instagram_id"), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "pagination": pagination})
}

// ImportProductDetails appends snippets from an uploaded CSV file.
func (h *Handler) ImportProductDetails(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, entities.NewValidationError("CSV file is required in the 'file' field"))
		return
	}

	f, err := file.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()

	n, err := h.productDetails.Import(c.Request.Context(), currentCompany(c), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "imported": n})
}
