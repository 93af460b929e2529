package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	items, meta, err := h.Svc.ListProducts(ctx, page)
	if err != nil {
		return fail(c, l, "get_products_error", err, nil)
	}

	return c.JSON(http.StatusOK, transport.ProductPageResponse{
		Products: transport.NewProductResponses(items),
		Page:     meta,
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, l, "get_product_error")
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(c, l, "get_product_error", err, nil)
	}
	return c.JSON(http.StatusOK, transport.NewProductResponse(*product))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	items, meta, err := h.Svc.SearchProducts(ctx, q, page)
	if err != nil {
		return fail(c, l, "search_products_error", err, map[string]string{"q": q})
	}

	return c.JSON(http.StatusOK, transport.ProductPageResponse{
		Products: transport.NewProductResponses(items),
		Page:     meta,
	})
}
