package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/middleware"
	"github.com/Skotchmaster/geo_forum/internal/tokens"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	ForumHandler *ForumHTTP
	Tokens       *tokens.Service
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
		}
		return c.NoContent(http.StatusOK)
	})

	bearer := middleware.Bearer(d.Tokens)
	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/accessToken", d.AuthHandler.Refresh)
	api.POST("/logout", d.AuthHandler.Logout, bearer)
	api.POST("/users/:userId/forceRelogin", d.AuthHandler.ForceRelogin, bearer)

	f := d.ForumHandler
	api.GET("/search", f.Search)

	countries := api.Group("/countries")
	countries.GET("", f.ListCountries)
	countries.GET("/:countryId", f.GetCountry)
	countries.POST("", f.CreateCountry, bearer)
	countries.PUT("/:countryId", f.UpdateCountry, bearer)
	countries.DELETE("/:countryId", f.DeleteCountry, bearer)

	cities := countries.Group("/:countryId/cities")
	cities.GET("", f.ListCities)
	cities.GET("/:cityId", f.GetCity)
	cities.POST("", f.CreateCity, bearer)
	cities.PUT("/:cityId", f.UpdateCity, bearer)
	cities.DELETE("/:cityId", f.DeleteCity, bearer)

	places := cities.Group("/:cityId/places")
	places.GET("", f.ListPlaces)
	places.GET("/:placeId", f.GetPlace)
	places.POST("", f.CreatePlace, bearer)
	places.PUT("/:placeId", f.UpdatePlace, bearer)
	places.DELETE("/:placeId", f.DeletePlace, bearer)

	comments := api.Group("/comments")
	comments.GET("", f.ListComments)
	comments.GET("/:commentId", f.GetComment)
	comments.POST("", f.CreateComment, bearer)
	comments.PUT("/:commentId", f.UpdateComment, bearer)
	comments.DELETE("/:commentId", f.DeleteComment, bearer)
}
