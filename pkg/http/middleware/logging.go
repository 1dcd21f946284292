package middleware

import (
	"time"

	applogger "SmartCVD/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs HTTP requests. 5xx responses log at error level, 4xx at warn.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo write the response so the status is known
				c.Error(err)
			}

			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote_ip", c.RealIP()),
				applogger.Int("status", status),
				applogger.Duration("duration_ms", time.Since(start)),
				applogger.Int64("bytes", c.Response().Size),
			}
			switch {
			case status >= 500:
				if err != nil {
					fields = append(fields, applogger.Error(err))
				}
				l.Error("http request failed", fields...)
			case status >= 400:
				l.Warn("http request rejected", fields...)
			default:
				l.Info("http request", fields...)
			}
			return nil
		}
	}
}
