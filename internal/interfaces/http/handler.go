package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"instadm/internal/infrastructure"
	"instadm/internal/usecases"
)

// Dependencies is everything the router needs.
type Dependencies struct {
	Auth           *usecases.AuthUsecase
	Analytics      *usecases.AnalyticsUsecase
	Appointments   *usecases.AppointmentUsecase
	ProductDetails *usecases.ProductDetailsUsecase
	Companies      *usecases.CompanyUsecase
	ChatHistory    *usecases.ChatHistoryUsecase

	TenantLimiter *infrastructure.KeyedRateLimiter
	IPLimiter     *infrastructure.KeyedRateLimiter
	Logger        *zap.Logger
	Metrics       *Metrics

	// Ping reports storage health for /health. Optional.
	Ping func(ctx context.Context) error

	CORSOrigin   string
	MaxBodyBytes int64
	Production   bool
}

type Handler struct {
	errorResponder
	auth           *usecases.AuthUsecase
	analytics      *usecases.AnalyticsUsecase
	appointments   *usecases.AppointmentUsecase
	productDetails *usecases.ProductDetailsUsecase
	companies      *usecases.CompanyUsecase
	chatHistory    *usecases.ChatHistoryUsecase
	ping           func(ctx context.Context) error
}

func NewHandler(d Dependencies) *Handler {
	return &Handler{
		errorResponder: errorResponder{production: d.Production},
		auth:           d.Auth,
		analytics:      d.Analytics,
		appointments:   d.Appointments,
		productDetails: d.ProductDetails,
		companies:      d.Companies,
		chatHistory:    d.ChatHistory,
		ping:           d.Ping,
	}
}

func SetupRoutes(r *gin.Engine, d Dependencies) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	h := NewHandler(d)
	m := NewMiddleware(d)

	r.Use(m.RequestLogger())
	r.Use(m.Recovery())
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(d.MaxBodyBytes))
	r.Use(m.CORSMiddleware())

	r.GET("/health", h.Health)
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.ginHandler())
	}

	auth := m.AuthRequired()
	tenantLimit := m.RateLimitPerTenant()

	api := r.Group("/api")
	{
		// Credential issuance
		api.POST("/auth", m.RateLimitPerIP(), h.Login)
		api.POST("/auth/signup", m.RateLimitPerIP(), h.Signup)
		api.GET("/auth", auth, tenantLimit, h.Me)
		api.PUT("/auth/password", auth, tenantLimit, h.ChangePassword)

		api.GET("/analytics", auth, tenantLimit, h.GetAnalytics)

		// Appointments are booked by the bot without a dashboard token.
		api.POST("/appointments", h.CreateAppointment)
		api.GET("/appointments", auth, tenantLimit, h.ListAppointments)
		api.PUT("/appointments", auth, tenantLimit, h.UpdateAppointment)

		api.POST("/product-details", h.CreateProductDetails)
		api.GET("/product-details", h.ListProductDetails)
		api.POST("/product-details/import", auth, tenantLimit, h.ImportProductDetails)

		api.GET("/company", h.GetCompany)
		api.POST("/company", m.RateLimitPerIP(), h.RegisterCompany)
		api.PUT("/company", auth, tenantLimit, h.UpdateCompany)
		api.DELETE("/company", auth, tenantLimit, h.DeleteCompany)
		api.GET("/company/qrcode", auth, tenantLimit, h.GetCompanyQRCode)

		api.POST("/chat-history", auth, tenantLimit, h.RecordMessage)
		api.GET("/chat-history", auth, tenantLimit, h.ListChatHistory)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, failure("Route not found"))
	})
}

// Health reports liveness and, when configured, storage reachability.
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
