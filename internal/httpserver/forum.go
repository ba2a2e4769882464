package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/service"
)

type ForumHTTP struct {
	Svc *service.ForumService
}

func parseID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not a positive integer", name))
	}
	return uint(v), nil
}

// parseIDs reads path parameters in order and stops at the first bad one.
func parseIDs(c echo.Context, names ...string) ([]uint, error) {
	out := make([]uint, 0, len(names))
	for _, n := range names {
		id, err := parseID(c, n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
