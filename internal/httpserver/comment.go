package httpserver

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/middleware"
	"github.com/Skotchmaster/geo_forum/internal/models"
	"github.com/Skotchmaster/geo_forum/internal/transport"
	"github.com/Skotchmaster/geo_forum/internal/util"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

func (h *ForumHTTP) ListComments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.list")

	entityType := c.QueryParam("entityType")
	err := validation.Validate(entityType,
		validation.In(models.EntityCountry, models.EntityCity, models.EntityPlace))
	if err != nil {
		return validationError(validation.Errors{"entityType": err})
	}
	entityID := util.ParseIntDefault(c.QueryParam("entityId"), 0)
	if entityID < 0 {
		entityID = 0
	}

	items, err := h.Svc.ListComments(ctx, entityType, uint(entityID))
	if err != nil {
		return fail(l, "list_comments_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ForumHTTP) GetComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.get")

	id, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	comment, err := h.Svc.GetComment(ctx, id)
	if err != nil {
		return fail(l, "get_comment_error", err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *ForumHTTP) CreateComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.create")

	var req transport.CommentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_comment_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	comment, err := h.Svc.CreateComment(ctx, middleware.Identity(c), req)
	if err != nil {
		return fail(l, "create_comment_error", err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *ForumHTTP) UpdateComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.update")

	id, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	var req transport.CommentUpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_comment_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	comment, err := h.Svc.UpdateComment(ctx, middleware.Identity(c), id, req)
	if err != nil {
		return fail(l, "update_comment_error", err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *ForumHTTP) DeleteComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.delete")

	id, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteComment(ctx, middleware.Identity(c), id); err != nil {
		return fail(l, "delete_comment_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
