package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

type Deps struct {
	DB              *gorm.DB
	CatalogHandler  *CatalogHTTP
	AdminHandler    *AdminHTTP
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	AuthHandler     *AuthHTTP
	JWTSecret       []byte
	SecureCookies   bool
}

// csrfExempt are the routes reachable before a session exists.
var csrfExempt = []string{"/auth/signup", "/auth/login", "/auth/refresh"}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = d.SecureCookies
	csrfCfg.SkipPaths = csrfExempt
	app := e.Group("", csrf.Middleware(csrfCfg))

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthHandler.Svc, d.SecureCookies)

	auth := app.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)

	products := app.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	cart := app.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.POST("/delete-item", d.CartHandler.RemoveFromCart)
	cart.DELETE("", d.CartHandler.ClearCart)

	checkout := app.Group("/checkout", authMW.RequireAuth)
	checkout.GET("", d.CheckoutHandler.Checkout)
	checkout.GET("/success", d.CheckoutHandler.Success)
	checkout.GET("/cancel", d.CheckoutHandler.Cancel)

	orders := app.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id/invoice", d.OrderHandler.Invoice)

	admin := app.Group("/admin/products", authMW.RequireAuth)
	admin.GET("", d.AdminHandler.OwnProducts)
	admin.GET("/export", d.AdminHandler.ExportProducts)
	admin.POST("", d.AdminHandler.CreateProduct)
	admin.PUT("/:id", d.AdminHandler.UpdateProduct)
	admin.DELETE("/:id", d.AdminHandler.DeleteProduct)
}

func (d *Deps) ready(c echo.Context) error {
	sqlDB, err := d.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
