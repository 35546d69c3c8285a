package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const RequestIDKey = "X-Request-ID"

// FromContext returns a request-scoped logger carrying the request id
// set by the request-id middleware.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}
	reqID, ok := c.Get(RequestIDKey).(string)
	if !ok {
		reqID = "unknown"
	}
	return GetLogger().With(zap.String("request_id", reqID))
}
