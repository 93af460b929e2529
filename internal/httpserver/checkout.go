package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/money"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.start")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	sum, err := h.Svc.StartCheckout(ctx, userID, baseURL(c))
	if err != nil {
		return fail(c, l, "checkout_error", err, nil)
	}

	l.Info("checkout_started", "session_id", sum.SessionID, "total", money.Format(sum.Total))
	return c.JSON(http.StatusOK, transport.CheckoutResponse{
		SessionID:  sum.SessionID,
		PaymentURL: sum.PaymentURL,
		Items:      transport.NewCartLines(sum.Items),
		TotalSum:   money.Format(sum.Total),
	})
}

// Success is the payment provider's return URL. It records the order once and
// redirects to the order list, also on repeated visits.
func (h *CheckoutHTTP) Success(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.success")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	order, created, err := h.Svc.CompleteCheckout(ctx, userID, c.QueryParam("session_id"))
	if err != nil {
		return fail(c, l, "checkout_success_error", err, nil)
	}

	l.Info("checkout_completed", "order_id", order.ID, "created", created)
	return c.Redirect(http.StatusSeeOther, "/orders")
}

func (h *CheckoutHTTP) Cancel(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/checkout")
}
