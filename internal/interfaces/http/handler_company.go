package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instadm/internal/entities"
	"instadm/internal/usecases"
)

// GetCompany returns the public bot profile for ?instagram_id=.
// The bot knows only which account a DM arrived on, so this resolves that one
// tenant instead of listing companies, and never exposes credentials.
func (h *Handler) GetCompany(c *gin.Context) {
	profile, err := h.companies.BotProfile(c.Request.Context(), c.Query("instagram_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "company": profile})
}

func (h *Handler) RegisterCompany(c *gin.Context) {
	var req usecases.RegisterCompanyInput
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	company, err := h.companies.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "company": company})
}

// updateCompanyRequest lists the only fields a company may change about
// itself. Anything else in the body is ignored.
type updateCompanyRequest struct {
	Name             *string         `json:"name"`
	Phone            *string         `json:"phone"`
	Profile          *string         `json:"profile"`
	FAQs             *[]entities.FAQ `json:"faqs"`
	BotIdentity      *string         `json:"bot_identity"`
	BotRole          *string         `json:"bot_role"`
	ConversationFlow *string         `json:"conversation_flow"`
	Keywords         *[]string       `json:"keywords"`
	IsActive         *bool           `json:"is_active"`
}

func (r updateCompanyRequest) toUpdate() entities.CompanyUpdate {
	return entities.CompanyUpdate{
		Name:             r.Name,
		Phone:            r.Phone,
		Profile:          r.Profile,
		BotIdentity:      r.BotIdentity,
		BotRole:          r.BotRole,
		ConversationFlow: r.ConversationFlow,
		FAQs:             r.FAQs,
		Keywords:         r.Keywords,
		IsActive:         r.IsActive,
	}
}

func (h *Handler) UpdateCompany(c *gin.Context) {
	var req updateCompanyRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	company, err := h.companies.Update(c.Request.Context(), currentCompany(c).ID, req.toUpdate())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "company": company})
}

// DeleteCompany removes the authenticated company and all of its data.
func (h *Handler) DeleteCompany(c *gin.Context) {
	if err := h.companies.Delete(c.Request.Context(), currentCompany(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Company deleted"})
}

// GetCompanyQRCode returns a PNG QR code linking to the company's Instagram
// DM thread.
func (h *Handler) GetCompanyQRCode(c *gin.Context) {
	size, err := queryInt(c, "size")
	if err != nil {
		h.respondError(c, err)
		return
	}

	png, err := h.companies.QRCode(currentCompany(c), size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}
