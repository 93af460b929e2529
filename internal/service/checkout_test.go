package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type failingGateway struct{}

func (failingGateway) CreateSession(context.Context, payment.SessionRequest) (*payment.Session, error) {
	return nil, errors.New("stripe unavailable")
}

func (failingGateway) GetSession(context.Context, string) (*payment.Session, error) {
	return nil, errors.New("stripe unavailable")
}

type checkoutFixture struct {
	repo     *repo.GormRepo
	svc      *CheckoutService
	cart     *CartService
	gateway  *payment.Memory
	events   *fakePublisher
	notifier *fakeNotifier
	user     *models.User
	book     *models.Product
	pen      *models.Product
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	r := newTestRepo(t)
	f := &checkoutFixture{
		repo:     r,
		gateway:  payment.NewMemory(false),
		events:   &fakePublisher{},
		notifier: &fakeNotifier{},
	}
	f.cart = &CartService{Repo: r}
	f.svc = &CheckoutService{
		Repo:     r,
		Cart:     f.cart,
		Payments: f.gateway,
		Currency: "usd",
		Events:   f.events,
		Notifier: f.notifier,
	}
	f.user = mustUser(t, r, "buyer@example.com")
	seller := uuid.New()
	f.book = mustProduct(t, r, seller, "book", "9.99")
	f.pen = mustProduct(t, r, seller, "pen", "5.00")
	return f
}

func (f *checkoutFixture) fillCart(t *testing.T) {
	t.Helper()
	for _, id := range []uuid.UUID{f.book.ID, f.book.ID, f.pen.ID} {
		_, err := f.cart.Add(context.Background(), f.user.ID, id)
		require.NoError(t, err)
	}
}

func (f *checkoutFixture) paidSession(t *testing.T) string {
	t.Helper()
	sum, err := f.svc.StartCheckout(context.Background(), f.user.ID, "http://shop.test")
	require.NoError(t, err)
	require.NoError(t, f.gateway.MarkPaid(sum.SessionID))
	return sum.SessionID
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.svc.StartCheckout(context.Background(), f.user.ID, "http://shop.test")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestStartCheckout_BuildsSessionRequest(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)

	sum, err := f.svc.StartCheckout(context.Background(), f.user.ID, "https://shop.test")
	require.NoError(t, err)
	assert.NotEmpty(t, sum.SessionID)
	assert.Equal(t, "24.98", sum.Total.StringFixed(2))
	require.Len(t, sum.Items, 2)

	require.Len(t, f.gateway.Requests, 1)
	req := f.gateway.Requests[0]
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, f.user.ID.String(), req.ClientReference)
	assert.Equal(t, "https://shop.test/checkout/success?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.Equal(t, "https://shop.test/checkout/cancel", req.CancelURL)
	assert.Equal(t, []payment.LineItem{
		{Name: "book", Description: "about book", UnitAmount: 999, Quantity: 2},
		{Name: "pen", Description: "about pen", UnitAmount: 500, Quantity: 1},
	}, req.Items)
}

func TestStartCheckout_GatewayFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	f.svc.Payments = failingGateway{}

	_, err := f.svc.StartCheckout(context.Background(), f.user.ID, "http://shop.test")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCompleteCheckout_RecordsSnapshotAndClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fillCart(t)
	session := f.paidSession(t)

	order, created, err := f.svc.CompleteCheckout(ctx, f.user.ID, session)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, f.user.Email, order.Email)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "book", order.Items[0].Title)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "24.98", order.Total().StringFixed(2))

	cart, err := f.cart.Resolve(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	assert.Equal(t, []string{"order_created"}, f.events.types())
	assert.Equal(t, []uuid.UUID{order.ID}, f.notifier.orders)
}

func TestCompleteCheckout_SecondCallbackReturnsSameOrder(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fillCart(t)
	session := f.paidSession(t)

	first, created, err := f.svc.CompleteCheckout(ctx, f.user.ID, session)
	require.NoError(t, err)
	require.True(t, created)

	// refill so a buggy second run would have something to record
	f.fillCart(t)

	second, created, err := f.svc.CompleteCheckout(ctx, f.user.ID, session)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	orders, err := f.repo.OrdersByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	cart, err := f.cart.Resolve(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestCompleteCheckout_SnapshotSurvivesProductEdit(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fillCart(t)
	order, _, err := f.svc.CompleteCheckout(ctx, f.user.ID, f.paidSession(t))
	require.NoError(t, err)

	f.book.Title = "renamed"
	f.book.Price = decimal.RequireFromString("100")
	require.NoError(t, f.repo.UpdateProduct(ctx, f.book))
	require.NoError(t, f.repo.DeleteProduct(ctx, f.pen.ID))

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "book", stored.Items[0].Title)
	assert.Equal(t, "24.98", stored.Total().StringFixed(2))
}

func TestCompleteCheckout_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fillCart(t)

	_, _, err := f.svc.CompleteCheckout(ctx, f.user.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	sum, err := f.svc.StartCheckout(ctx, f.user.ID, "http://shop.test")
	require.NoError(t, err)

	_, _, err = f.svc.CompleteCheckout(ctx, f.user.ID, sum.SessionID)
	assert.ErrorIs(t, err, ErrValidation, "unpaid session")

	require.NoError(t, f.gateway.MarkPaid(sum.SessionID))
	intruder := mustUser(t, f.repo, "intruder@example.com")
	_, _, err = f.svc.CompleteCheckout(ctx, intruder.ID, sum.SessionID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = f.svc.CompleteCheckout(ctx, f.user.ID, "cs_unknown")
	assert.ErrorIs(t, err, ErrUpstream)

	order, _, err := f.svc.CompleteCheckout(ctx, f.user.ID, sum.SessionID)
	require.NoError(t, err)
	_, _, err = f.svc.CompleteCheckout(ctx, intruder.ID, sum.SessionID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotNil(t, order)
}

func TestCompleteCheckout_EmptyCartAfterPayment(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fillCart(t)
	session := f.paidSession(t)
	require.NoError(t, f.cart.Clear(ctx, f.user.ID))

	_, _, err := f.svc.CompleteCheckout(ctx, f.user.ID, session)
	assert.ErrorIs(t, err, ErrEmptyCart)
}
