package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instadm/internal/usecases"
)

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req usecases.CreateAppointmentInput
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	req.Notes = SanitizeString(req.Notes)

	appointment, err := h.appointments.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "appointment": appointment})
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.appointments.List(c.Request.Context(), currentCompany(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": appointments})
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req usecases.UpdateAppointmentInput
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if req.Notes != nil {
		notes := SanitizeString(*req.Notes)
		req.Notes = &notes
	}

	appointment, err := h.appointments.Update(c.Request.Context(), currentCompany(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": appointment})
}
