package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

// fail logs err under event and turns it into the HTTP response. Validation
// failures answer 422 with field messages and the submitted input.
func fail(c echo.Context, l *slog.Logger, event string, err error, input any) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", "validation failed", "error", err)
		return c.JSON(http.StatusUnprocessableEntity, transport.ValidationErrorResponse{
			Message:  firstMessage(verr.Fields),
			Errors:   verr.Fields,
			OldInput: input,
		})
	}

	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "cart is empty"
	case errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity, "invalid input"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "not allowed"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "invalid credentials"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// fieldOrder is the order fields appear in the forms; the first failing one is the headline.
var fieldOrder = []string{"email", "password", "confirmPassword", "title", "price", "description", "imageUrl", "productId"}

func firstMessage(fields service.FieldErrors) string {
	for _, name := range fieldOrder {
		if msg, ok := fields[name]; ok {
			return msg
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return "invalid input"
	}
	return fields[keys[0]]
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	raw, _ := c.Get("user_id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func parseID(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "id is not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}
	return id, nil
}

func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
