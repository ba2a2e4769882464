package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/middleware"
	"github.com/Skotchmaster/geo_forum/internal/transport"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

func (h *ForumHTTP) ListCountries(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "country.list")

	items, err := h.Svc.ListCountries(ctx)
	if err != nil {
		return fail(l, "list_countries_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCountryList(items))
}

func (h *ForumHTTP) GetCountry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "country.get")

	id, err := parseID(c, "countryId")
	if err != nil {
		return err
	}
	country, err := h.Svc.GetCountry(ctx, id)
	if err != nil {
		return fail(l, "get_country_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCountryResponse(*country))
}

func (h *ForumHTTP) CreateCountry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "country.create")

	var req transport.CountryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_country_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	country, err := h.Svc.CreateCountry(ctx, middleware.Identity(c), req)
	if err != nil {
		return fail(l, "create_country_error", err)
	}
	l.Info("create_country_success", "country_id", country.ID)
	return c.JSON(http.StatusCreated, transport.NewCountryResponse(*country))
}

func (h *ForumHTTP) UpdateCountry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "country.update")

	id, err := parseID(c, "countryId")
	if err != nil {
		return err
	}
	var req transport.CountryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_country_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	country, err := h.Svc.UpdateCountry(ctx, middleware.Identity(c), id, req)
	if err != nil {
		return fail(l, "update_country_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCountryResponse(*country))
}

func (h *ForumHTTP) DeleteCountry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "country.delete")

	id, err := parseID(c, "countryId")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCountry(ctx, middleware.Identity(c), id); err != nil {
		return fail(l, "delete_country_error", err)
	}
	l.Info("delete_country_success", "country_id", id)
	return c.NoContent(http.StatusNoContent)
}
