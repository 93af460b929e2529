package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListOrders(ctx, userID)
	if err != nil {
		return fail(c, l, "list_orders_error", err, nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": transport.NewOrderResponses(orders)})
}

func (h *OrderHTTP) Invoice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.invoice")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "invoice_error")
	if err != nil {
		return err
	}

	order, err := h.Svc.OwnedOrder(ctx, userID, id)
	if err != nil {
		return fail(c, l, "invoice_error", err, nil)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/pdf")
	res.Header().Set(echo.HeaderContentDisposition, `inline; filename="`+invoice.FileName(order.ID)+`"`)
	if err := h.Svc.WriteInvoice(order, res); err != nil {
		l.Error("invoice_error", "status", 500, "reason", "cannot render invoice", "error", err)
		if res.Committed {
			return nil
		}
		res.Header().Del(echo.HeaderContentDisposition)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot generate invoice")
	}
	return nil
}
