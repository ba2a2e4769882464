package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/geo_forum/pkg/middleware/logging"
)

func Common(l *slog.Logger, corsOrigins []string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLoggerWithConfig(loggingmw.Config{
			Logger:  l,
			Skipper: func(c echo.Context) bool { return strings.HasPrefix(c.Path(), "/health/") },
			Subject: func(c echo.Context) string {
				if id := Identity(c); id != nil {
					return id.Subject
				}
				return ""
			},
		}),
		ecM.Secure(),
		ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins: corsOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}),
		ecM.BodyLimit("1M"),
	}
}
