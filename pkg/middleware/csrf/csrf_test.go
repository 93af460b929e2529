package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	return newEchoWith(DefaultConfig())
}

func newEchoWith(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/cart", ok)
	e.POST("/cart", ok)
	return e
}

func TestCSRF_GetIssuesToken(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, "XSRF-TOKEN", rec.Result().Cookies()[0].Name)
}

func TestCSRF_PostWithMatchingToken(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCSRF_PostWithMismatchedToken(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "other")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRF_PostFromForeignOrigin(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRF_BearerRequestsPass(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCSRF_ZeroConfigRejectsForeignOrigin(t *testing.T) {
	e := newEchoWith(Config{})
	req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRF_AllowCrossOrigin(t *testing.T) {
	e := newEchoWith(Config{AllowCrossOrigin: true})
	req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://other.test")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
