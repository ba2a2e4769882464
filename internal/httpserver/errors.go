package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/policy"
	"github.com/Skotchmaster/geo_forum/internal/service"
)

type ErrorResponse struct {
	ErrorMessage string            `json:"errorMessage"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// ErrorHandler renders every error as ErrorResponse.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := ErrorResponse{ErrorMessage: http.StatusText(code)}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case ErrorResponse:
			body = m
		case string:
			body = ErrorResponse{ErrorMessage: m}
		case error:
			body = ErrorResponse{ErrorMessage: m.Error()}
		default:
			body = ErrorResponse{ErrorMessage: fmt.Sprint(m)}
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

func fieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}
	return out
}

func validationError(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, ErrorResponse{
		ErrorMessage: "validation failed",
		Errors:       fieldErrors(err),
	})
}

// fail maps a service error to an HTTP error and logs it under event.
func fail(l *slog.Logger, event string, err error) error {
	var code int
	var msg string
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", http.StatusUnprocessableEntity, "error", err)
		return validationError(err)
	case errors.Is(err, service.ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, policy.ErrUnauthenticated):
		code, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, policy.ErrForbidden):
		code, msg = http.StatusForbidden, "forbidden"
	default:
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	l.Warn(event, "status", code, "error", err)
	return echo.NewHTTPError(code, msg)
}
