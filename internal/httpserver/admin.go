package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/export"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// AdminHTTP serves product management for the products a user owns.
type AdminHTTP struct {
	Svc *service.CatalogService
}

func (h *AdminHTTP) OwnProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.OwnerProducts(ctx, userID)
	if err != nil {
		return fail(c, l, "admin_products_error", err, nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"products": transport.NewProductResponses(items)})
}

func (h *AdminHTTP) ExportProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.export")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.OwnerProducts(ctx, userID)
	if err != nil {
		return fail(c, l, "export_products_error", err, nil)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, export.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.ProductsFile+`"`)
	if err := export.WriteProducts(res, items); err != nil {
		l.Error("export_products_error", "status", 500, "reason", "cannot write workbook", "error", err)
		if res.Committed {
			return nil
		}
		res.Header().Del(echo.HeaderContentDisposition)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot export products")
	}
	return nil
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Trim()

	fields := service.FieldErrors{}
	if err := c.Validate(&req); err != nil {
		ve, ok := err.(*service.ValidationError)
		if !ok {
			return fail(c, l, "product_create_error", err, req)
		}
		fields = ve.Fields
	}
	if req.ImageURL == "" {
		fields["imageUrl"] = fieldMessages["imageUrl"]
	}
	if len(fields) > 0 {
		return fail(c, l, "product_create_error", &service.ValidationError{Fields: fields}, req)
	}

	prod, err := h.Svc.CreateProduct(ctx, userID, toInput(req))
	if err != nil {
		return fail(c, l, "product_create_error", err, req)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, transport.NewProductResponse(*prod))
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_product")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "product_update_error")
	if err != nil {
		return err
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Trim()
	if err := c.Validate(&req); err != nil {
		return fail(c, l, "product_update_error", err, req)
	}

	prod, err := h.Svc.UpdateProduct(ctx, userID, id, toInput(req))
	if err != nil {
		return fail(c, l, "product_update_error", err, req)
	}

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, transport.NewProductResponse(*prod))
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "product_delete_error")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, userID, id); err != nil {
		return fail(c, l, "product_delete_error", err, nil)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

// toInput converts a validated request; the price has already passed positive_amount.
func toInput(req transport.ProductRequest) service.ProductInput {
	price, _ := decimal.NewFromString(string(req.Price))
	return service.ProductInput{
		Title:       req.Title,
		Price:       price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
}
