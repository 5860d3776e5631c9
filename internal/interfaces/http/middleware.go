package http

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"instadm/internal/entities"
	"instadm/internal/infrastructure"
	"instadm/internal/logging"
	"instadm/internal/usecases"
)

const (
	companyKey      = "company"
	requestIDHeader = "X-Request-ID"
)

type Middleware struct {
	errorResponder
	auth          *usecases.AuthUsecase
	tenantLimiter *infrastructure.KeyedRateLimiter
	ipLimiter     *infrastructure.KeyedRateLimiter
	logger        *zap.Logger
	metrics       *Metrics
	corsOrigin    string
}

func NewMiddleware(d Dependencies) *Middleware {
	return &Middleware{
		errorResponder: errorResponder{production: d.Production},
		auth:           d.Auth,
		tenantLimiter:  d.TenantLimiter,
		ipLimiter:      d.IPLimiter,
		logger:         d.Logger,
		metrics:        d.Metrics,
		corsOrigin:     d.CORSOrigin,
	}
}

// AuthRequired is the single authentication gate. It resolves the bearer
// token to a company and stores it on the context.
func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		company, err := m.auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			m.respondError(c, err)
			return
		}
		c.Set(companyKey, company)
		c.Next()
	}
}

// currentCompany returns the company stored by AuthRequired.
func currentCompany(c *gin.Context) *entities.Company {
	v, ok := c.Get(companyKey)
	if !ok {
		return nil
	}
	company, _ := v.(*entities.Company)
	return company
}

// RateLimitPerTenant limits requests per authenticated company (must follow
// AuthRequired).
func (m *Middleware) RateLimitPerTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		company := currentCompany(c)
		if company == nil {
			m.respondError(c, entities.Unauthorized("Company identity not found for rate limiting"))
			return
		}
		m.limit(c, m.tenantLimiter, "tenant", company.ID)
	}
}

// RateLimitPerIP limits unauthenticated endpoints such as login by client IP.
func (m *Middleware) RateLimitPerIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.limit(c, m.ipLimiter, "ip", c.ClientIP())
	}
}

func (m *Middleware) limit(c *gin.Context, limiter *infrastructure.KeyedRateLimiter, scope, key string) {
	if limiter == nil || limiter.Allow(key) {
		c.Next()
		return
	}

	retry := int(math.Ceil(limiter.RetryAfter(key).Seconds()))
	if retry < 1 {
		retry = 1
	}
	c.Header("Retry-After", fmt.Sprint(retry))
	if m.metrics != nil {
		m.metrics.RateLimited.WithLabelValues(scope).Inc()
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, failure("Rate limit exceeded"))
}

// RequestLogger tags each request with an id, attaches a request-scoped
// logger to the context and logs the outcome.
func (m *Middleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		logger := m.logger.With(zap.String("request_id", requestID))
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		if m.metrics != nil {
			m.metrics.observeRequest(c.Request.Method, c.FullPath(), status, elapsed)
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		if company := currentCompany(c); company != nil {
			fields = append(fields, zap.String("company_id", company.ID))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Recovery converts panics into a 500 response.
func (m *Middleware) Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logging.FromContext(c.Request.Context()).Error("panic recovered",
			zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path), zap.Stack("stack"))
		m.respondError(c, fmt.Errorf("panic: %v", recovered))
	})
}

// CORSMiddleware allows Cross-Origin requests
func (m *Middleware) CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", m.corsOrigin)
		if m.corsOrigin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityHeaders adds security headers to prevent common attacks
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// API only: nothing here should ever be rendered as a document.
		c.Writer.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		c.Next()
	}
}

// RequestSizeLimiter limits request body size to prevent DoS
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
