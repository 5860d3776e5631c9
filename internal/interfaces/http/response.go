package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"instadm/internal/entities"
	"instadm/internal/logging"
)

// errorResponder writes the {success:false, error, details?} envelope.
type errorResponder struct {
	production bool
}

func (e errorResponder) respondError(c *gin.Context, err error) {
	status, body := e.errorBody(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}

func (e errorResponder) errorBody(err error) (int, gin.H) {
	var (
		ve       *entities.ValidationError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		body := gin.H{"success": false, "error": ve.Message}
		if len(ve.Fields) > 0 {
			body["details"] = ve.Fields
		}
		return http.StatusBadRequest, body
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, failure("Request body too large")
	case errors.Is(err, entities.ErrInvalidCredentials):
		return http.StatusUnauthorized, failure("Invalid credentials")
	case errors.Is(err, entities.ErrUnauthorized):
		return http.StatusUnauthorized, failure(err.Error())
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound, failure(err.Error())
	case errors.Is(err, entities.ErrConflict):
		return http.StatusConflict, failure(err.Error())
	}

	if e.production {
		return http.StatusInternalServerError, failure("Internal server error")
	}
	return http.StatusInternalServerError, failure("Internal server error: " + err.Error())
}

func failure(msg string) gin.H {
	return gin.H{"success": false, "error": msg}
}

// bindJSON decodes the request body into dst. Oversized bodies map to 413,
// anything else malformed to 400.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return entities.NewValidationError("Invalid request body")
	}
	return nil
}
