package middleware

import (
	"time"

	applogger "BarPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs each request with method, path, status, and latency.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			if l != nil {
				l.Info("http request",
					applogger.String("method", c.Request().Method),
					applogger.String("path", c.Path()),
					applogger.Int("status", c.Response().Status),
					applogger.Duration("latency_ms", time.Since(start)),
				)
			}
			return err
		}
	}
}
