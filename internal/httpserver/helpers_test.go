package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var (
	testJWTSecret     = []byte("access-secret")
	testRefreshSecret = []byte("refresh-secret")
)

type testEnv struct {
	e        *echo.Echo
	repo     *repo.GormRepo
	payments *payment.Memory
	deps     *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	payments := payment.NewMemory(true)

	catalog := &service.CatalogService{Repo: r}
	cart := &service.CartService{Repo: r}
	checkout := &service.CheckoutService{Repo: r, Cart: cart, Payments: payments, Currency: "usd"}
	orders := &service.OrderService{Repo: r, Invoices: invoice.NewGenerator(t.TempDir())}
	auth := &service.AuthService{Repo: r, JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}

	deps := &Deps{
		DB:              db,
		CatalogHandler:  &CatalogHTTP{Svc: catalog},
		AdminHandler:    &AdminHTTP{Svc: catalog},
		CartHandler:     &CartHTTP{Svc: cart},
		CheckoutHandler: &CheckoutHTTP{Svc: checkout},
		OrderHandler:    &OrderHTTP{Svc: orders},
		AuthHandler:     &AuthHTTP{Svc: auth},
		JWTSecret:       testJWTSecret,
	}

	e := echo.New()
	Register(e, deps)
	return &testEnv{e: e, repo: r, payments: payments, deps: deps}
}

// newContext builds an echo context for calling a handler directly.
func (env *testEnv) newContext(method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.e.NewContext(req, rec)
}

func (env *testEnv) contextAs(user *models.User, method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	rec, c := env.newContext(method, target, body)
	c.Set("user_id", user.ID.String())
	c.Set("email", user.Email)
	return rec, c
}

// serve runs a request through the full router with a bearer token for user, if any.
func (env *testEnv) serve(t *testing.T, user *models.User, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != nil {
		token, err := tokens.SignAccess(user.ID.String(), user.Email, time.Now().Add(time.Minute), testJWTSecret)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	hash, err := pkg_hash.HashPassword("secret1")
	require.NoError(t, err)
	u := &models.User{Email: email, PasswordHash: hash}
	require.NoError(t, env.repo.CreateUser(context.Background(), u))
	return u
}

func (env *testEnv) product(t *testing.T, owner uuid.UUID, title, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:       title,
		Price:       decimal.RequireFromString(price),
		Description: "about " + title,
		ImageURL:    "/img/" + title + ".png",
		UserID:      owner,
	}
	require.NoError(t, env.repo.CreateProduct(context.Background(), p))
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}
