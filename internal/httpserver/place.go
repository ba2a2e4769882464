package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/middleware"
	"github.com/Skotchmaster/geo_forum/internal/transport"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

func (h *ForumHTTP) ListPlaces(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place.list")

	ids, err := parseIDs(c, "countryId", "cityId")
	if err != nil {
		return err
	}
	items, err := h.Svc.ListPlaces(ctx, ids[0], ids[1])
	if err != nil {
		return fail(l, "list_places_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPlaceList(items))
}

func (h *ForumHTTP) GetPlace(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place.get")

	ids, err := parseIDs(c, "countryId", "cityId", "placeId")
	if err != nil {
		return err
	}
	place, err := h.Svc.GetPlace(ctx, ids[0], ids[1], ids[2])
	if err != nil {
		return fail(l, "get_place_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPlaceResponse(*place))
}

func (h *ForumHTTP) CreatePlace(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place.create")

	ids, err := parseIDs(c, "countryId", "cityId")
	if err != nil {
		return err
	}
	var req transport.PlaceRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_place_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	place, err := h.Svc.CreatePlace(ctx, middleware.Identity(c), ids[0], ids[1], req)
	if err != nil {
		return fail(l, "create_place_error", err)
	}
	return c.JSON(http.StatusCreated, transport.NewPlaceResponse(*place))
}

func (h *ForumHTTP) UpdatePlace(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place.update")

	ids, err := parseIDs(c, "countryId", "cityId", "placeId")
	if err != nil {
		return err
	}
	var req transport.PlaceRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_place_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	place, err := h.Svc.UpdatePlace(ctx, middleware.Identity(c), ids[0], ids[1], ids[2], req)
	if err != nil {
		return fail(l, "update_place_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPlaceResponse(*place))
}

func (h *ForumHTTP) DeletePlace(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place.delete")

	ids, err := parseIDs(c, "countryId", "cityId", "placeId")
	if err != nil {
		return err
	}
	if err := h.Svc.DeletePlace(ctx, middleware.Identity(c), ids[0], ids[1], ids[2]); err != nil {
		return fail(l, "delete_place_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
