package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/policy"
	"github.com/Skotchmaster/geo_forum/internal/tokens"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

const CtxIdentity = "identity"

// Bearer requires "Authorization: Bearer <access token>" and stores the
// resulting *policy.Identity under CtxIdentity. Any failure is a 401 with a
// generic message; the reason is only logged.
func Bearer(ts *tokens.Service) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: CtxIdentity,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims, err := ts.ParseAccessToken(auth)
			if err != nil {
				return nil, err
			}
			return &policy.Identity{
				Subject: claims.Subject,
				Name:    claims.Name,
				Roles:   claims.Roles,
			}, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).
				Warn("auth_failed", "status", 401, "reason", err.Error())
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		},
	})
}

// Identity returns the caller set by Bearer, or nil.
func Identity(c echo.Context) *policy.Identity {
	id, _ := c.Get(CtxIdentity).(*policy.Identity)
	return id
}
