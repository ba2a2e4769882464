package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/middleware"
	"github.com/Skotchmaster/geo_forum/internal/transport"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

func (h *ForumHTTP) ListCities(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "city.list")

	countryID, err := parseID(c, "countryId")
	if err != nil {
		return err
	}
	items, err := h.Svc.ListCities(ctx, countryID)
	if err != nil {
		return fail(l, "list_cities_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCityList(items))
}

func (h *ForumHTTP) GetCity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "city.get")

	ids, err := parseIDs(c, "countryId", "cityId")
	if err != nil {
		return err
	}
	city, err := h.Svc.GetCity(ctx, ids[0], ids[1])
	if err != nil {
		return fail(l, "get_city_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCityResponse(*city))
}

func (h *ForumHTTP) CreateCity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "city.create")

	countryID, err := parseID(c, "countryId")
	if err != nil {
		return err
	}
	var req transport.CityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_city_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	city, err := h.Svc.CreateCity(ctx, middleware.Identity(c), countryID, req)
	if err != nil {
		return fail(l, "create_city_error", err)
	}
	l.Info("create_city_success", "city_id", city.ID)
	return c.JSON(http.StatusCreated, transport.NewCityResponse(*city))
}

func (h *ForumHTTP) UpdateCity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "city.update")

	ids, err := parseIDs(c, "countryId", "cityId")
	if err != nil {
		return err
	}
	var req transport.CityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_city_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	city, err := h.Svc.UpdateCity(ctx, middleware.Identity(c), ids[0], ids[1], req)
	if err != nil {
		return fail(l, "update_city_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCityResponse(*city))
}

func (h *ForumHTTP) DeleteCity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "city.delete")

	ids, err := parseIDs(c, "countryId", "cityId")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCity(ctx, middleware.Identity(c), ids[0], ids[1]); err != nil {
		return fail(l, "delete_city_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
