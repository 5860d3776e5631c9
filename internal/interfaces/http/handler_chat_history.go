package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instadm/internal/usecases"
)

func (h *Handler) RecordMessage(c *gin.Context) {
	var req usecases.RecordMessageInput
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	message, err := h.chatHistory.Record(c.Request.Context(), currentCompany(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": message})
}

func (h *Handler) ListChatHistory(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items, pagination, err := h.chatHistory.List(c.Request.Context(), currentCompany(c), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "pagination": pagination})
}
