package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/search"
	"github.com/Skotchmaster/geo_forum/internal/util"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

func (h *ForumHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, ErrorResponse{
			ErrorMessage: "validation failed",
			Errors:       map[string]string{"q": "cannot be blank"},
		})
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.Search(ctx, q, offset, limit)
	if err != nil {
		if errors.Is(err, search.ErrDisabled) {
			l.Warn("search_error", "status", 503, "reason", "search disabled")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
		}
		l.Error("search_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": res.Items,
		"meta": util.NewMeta(page, offset, limit, res.Total),
	})
}
