package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"podbrief/internal/api/errors"
)

// ErrorHandler recovers panics into a generic internal error response.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic in handler",
			zap.Any("recovered", recovered),
			zap.String("request_id", GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"))

		writeError(c, errors.NewInternalError("Internal server error"))
	})
}

// HandleError writes err as a JSON error response and aborts the chain.
// Domain errors are translated by errors.FromDomain.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apiErr := errors.FromDomain(err)
	if apiErr.Kind == errors.KindInternal || apiErr.Kind == errors.KindServiceUnavailable {
		_ = c.Error(fmt.Errorf("%s: %w", apiErr.Kind, err))
	}
	writeError(c, apiErr)
}

func writeError(c *gin.Context, apiErr *errors.APIError) {
	resp := *apiErr
	resp.RequestID = GetRequestID(c)
	if resp.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(resp.RetryAfter.Seconds()+0.999)))
	}
	c.AbortWithStatusJSON(resp.HTTPStatus(), &resp)
}
