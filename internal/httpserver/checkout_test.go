package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")
	book := env.product(t, uuid.New(), "book", "9.99")
	pen := env.product(t, uuid.New(), "pen", "5.00")

	for _, id := range []uuid.UUID{book.ID, book.ID, pen.ID} {
		rec := env.serve(t, buyer, http.MethodPost, "/cart", map[string]string{"productId": id.String()})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := env.serve(t, buyer, http.MethodGet, "/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum := decode[transport.CheckoutResponse](t, rec)
	require.NotEmpty(t, sum.SessionID)
	assert.Equal(t, "24.98", sum.TotalSum)
	assert.Len(t, sum.Items, 2)

	require.Len(t, env.payments.Requests, 1)
	sent := env.payments.Requests[0]
	assert.Equal(t, buyer.ID.String(), sent.ClientReference)
	assert.Equal(t, "http://example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}", sent.SuccessURL)
	assert.Equal(t, "http://example.com/checkout/cancel", sent.CancelURL)

	successURL := "/checkout/success?session_id=" + url.QueryEscape(sum.SessionID)
	for i := 0; i < 2; i++ {
		rec = env.serve(t, buyer, http.MethodGet, successURL, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		assert.Equal(t, "/orders", rec.Header().Get("Location"))
	}

	rec = env.serve(t, buyer, http.MethodGet, "/cart", nil)
	assert.Empty(t, decode[transport.CartResponse](t, rec).Items)

	// the snapshot survives later product edits
	book.Price = decimal.RequireFromString("99.00")
	book.Title = "renamed"
	require.NoError(t, env.repo.UpdateProduct(context.Background(), book))

	rec = env.serve(t, buyer, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[map[string][]transport.OrderResponse](t, rec)["orders"]
	require.Len(t, orders, 1, "a repeated success callback must not create a second order")
	assert.Equal(t, "24.98", orders[0].TotalSum)
	prices := map[string]string{}
	for _, it := range orders[0].Items {
		prices[it.Title] = it.FormattedPrice
	}
	assert.Equal(t, map[string]string{"book": "9.99", "pen": "5.00"}, prices)

	rec = env.serve(t, buyer, http.MethodGet, "/orders/"+orders[0].ID.String()+"/invoice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="invoice-`+orders[0].ID.String()+`.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")

	rec := env.serve(t, buyer, http.MethodGet, "/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, env.payments.Requests)
}

func TestCheckoutSuccess_Rejections(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")
	other := env.user(t, "other@example.com")
	env.payments.Put(payment.Session{ID: "cs_unpaid", ClientReference: buyer.ID.String()})
	env.payments.Put(payment.Session{ID: "cs_paid", Paid: true, ClientReference: buyer.ID.String()})

	rec := env.serve(t, buyer, http.MethodGet, "/checkout/success", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.serve(t, buyer, http.MethodGet, "/checkout/success?session_id=cs_unpaid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.serve(t, other, http.MethodGet, "/checkout/success?session_id=cs_paid", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.serve(t, buyer, http.MethodGet, "/checkout/success?session_id=cs_unknown", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCheckoutCancel(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")

	rec := env.serve(t, buyer, http.MethodGet, "/checkout/cancel", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/checkout", rec.Header().Get("Location"))
}

func TestInvoice_OwnershipAndMissing(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")
	other := env.user(t, "other@example.com")
	book := env.product(t, uuid.New(), "book", "9.99")

	rec := env.serve(t, buyer, http.MethodPost, "/cart", map[string]string{"productId": book.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[transport.CheckoutResponse](t, env.serve(t, buyer, http.MethodGet, "/checkout", nil))
	rec = env.serve(t, buyer, http.MethodGet, "/checkout/success?session_id="+url.QueryEscape(sum.SessionID), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	orders, err := env.repo.OrdersByUser(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	rec = env.serve(t, other, http.MethodGet, "/orders/"+orders[0].ID.String()+"/invoice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.serve(t, buyer, http.MethodGet, "/orders/"+uuid.NewString()+"/invoice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.serve(t, nil, http.MethodGet, "/orders/"+orders[0].ID.String()+"/invoice", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckout_FollowingPaymentURLRecordsOrder(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")
	book := env.product(t, uuid.New(), "book", "9.99")

	rec := env.serve(t, buyer, http.MethodPost, "/cart", map[string]string{"productId": book.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	sum := decode[transport.CheckoutResponse](t, env.serve(t, buyer, http.MethodGet, "/checkout", nil))
	require.NotEmpty(t, sum.PaymentURL)
	assert.Equal(t, "http://example.com/checkout/success?session_id="+sum.SessionID, sum.PaymentURL)

	rec = env.serve(t, buyer, http.MethodGet, sum.PaymentURL, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/orders", rec.Header().Get("Location"))

	orders, err := env.repo.OrdersByUser(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
