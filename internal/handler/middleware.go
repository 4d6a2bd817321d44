package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/logger"
)

// RequestLogger attaches a request scoped logger (request_id, method, path) to the
// request context and logs the outcome of every request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := logger.WithLogger(req.Context(), map[string]interface{}{
				"request_id": requestID,
				"method":     req.Method,
				"path":       req.URL.Path,
			})
			c.SetRequest(req.WithContext(ctx))

			if err := next(c); err != nil {
				c.Error(err)
			}

			logger.InfoLog(ctx, "status=%d latency=%s", c.Response().Status, time.Since(start))
			return nil
		}
	}
}
