package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.Resolve(ctx, userID)
	if err != nil {
		return fail(c, l, "get_cart_error", err, nil)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(cart))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := h.bindProduct(c)
	if err != nil {
		return fail(c, l, "add_to_cart_error", err, nil)
	}

	item, err := h.Svc.Add(ctx, userID, productID)
	if err != nil {
		return fail(c, l, "add_to_cart_error", err, nil)
	}

	l.Info("add_to_cart_success", "product_id", productID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := h.bindProduct(c)
	if err != nil {
		return fail(c, l, "remove_from_cart_error", err, nil)
	}

	if err := h.Svc.Remove(ctx, userID, productID); err != nil {
		return fail(c, l, "remove_from_cart_error", err, nil)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(c, l, "clear_cart_error", err, nil)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) bindProduct(c echo.Context) (uuid.UUID, error) {
	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return uuid.Nil, &service.ValidationError{Fields: service.FieldErrors{"productId": fieldMessages["productId"]}}
	}
	if err := c.Validate(&req); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(req.ProductID), nil
}
