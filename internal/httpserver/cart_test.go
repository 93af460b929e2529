package httpserver

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCart_AddTwiceThenView(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")
	book := env.product(t, uuid.New(), "book", "9.99")
	pen := env.product(t, uuid.New(), "pen", "5.00")

	for _, id := range []uuid.UUID{book.ID, book.ID, pen.ID} {
		rec, c := env.contextAs(buyer, http.MethodPost, "/cart", map[string]string{"productId": id.String()})
		require.NoError(t, env.deps.CartHandler.AddToCart(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, c := env.contextAs(buyer, http.MethodGet, "/cart", nil)
	require.NoError(t, env.deps.CartHandler.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[transport.CartResponse](t, rec)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "24.98", resp.TotalSum)

	quantities := map[string]int{}
	for _, it := range resp.Items {
		quantities[it.Product.Title] = it.Quantity
	}
	assert.Equal(t, map[string]int{"book": 2, "pen": 1}, quantities)
}

func TestCart_AddReturnsItem(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")
	book := env.product(t, uuid.New(), "book", "9.99")

	rec, c := env.contextAs(buyer, http.MethodPost, "/cart", map[string]string{"productId": book.ID.String()})
	require.NoError(t, env.deps.CartHandler.AddToCart(c))

	item := decode[models.CartItem](t, rec)
	assert.Equal(t, book.ID, item.ProductID)
	assert.Equal(t, 1, item.Quantity)
}

func TestCart_AddUnknownOrInvalidProduct(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")

	_, c := env.contextAs(buyer, http.MethodPost, "/cart", map[string]string{"productId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, httpCode(t, env.deps.CartHandler.AddToCart(c)))

	rec, c := env.contextAs(buyer, http.MethodPost, "/cart", map[string]string{"productId": "42"})
	require.NoError(t, env.deps.CartHandler.AddToCart(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Product id must be a valid id.", decode[transport.ValidationErrorResponse](t, rec).Message)
}

func TestCart_RemoveAndClear(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "buyer@example.com")
	book := env.product(t, uuid.New(), "book", "9.99")
	pen := env.product(t, uuid.New(), "pen", "5.00")

	for _, id := range []uuid.UUID{book.ID, pen.ID} {
		_, c := env.contextAs(buyer, http.MethodPost, "/cart", map[string]string{"productId": id.String()})
		require.NoError(t, env.deps.CartHandler.AddToCart(c))
	}

	rec, c := env.contextAs(buyer, http.MethodPost, "/cart/delete-item", map[string]string{"productId": book.ID.String()})
	require.NoError(t, env.deps.CartHandler.RemoveFromCart(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, c = env.contextAs(buyer, http.MethodGet, "/cart", nil)
	require.NoError(t, env.deps.CartHandler.GetCart(c))
	resp := decode[transport.CartResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "pen", resp.Items[0].Product.Title)

	rec, c = env.contextAs(buyer, http.MethodDelete, "/cart", nil)
	require.NoError(t, env.deps.CartHandler.ClearCart(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, c = env.contextAs(buyer, http.MethodGet, "/cart", nil)
	require.NoError(t, env.deps.CartHandler.GetCart(c))
	resp = decode[transport.CartResponse](t, rec)
	assert.Empty(t, resp.Items)
	assert.Equal(t, "0.00", resp.TotalSum)
}
