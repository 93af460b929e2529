package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/money"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CheckoutService struct {
	Repo     *repo.GormRepo
	Cart     *CartService
	Payments payment.Gateway
	Currency string
	Events   EventPublisher
	Notifier OrderNotifier
}

type CheckoutSummary struct {
	SessionID  string
	PaymentURL string
	Items      []CartLine
	Total      decimal.Decimal
}

type orderEvent struct {
	OrderID   uuid.UUID `json:"orderId"`
	UserID    uuid.UUID `json:"userId"`
	SessionID string    `json:"sessionId"`
	Items     int       `json:"items"`
	Total     string    `json:"total"`
}

func SuccessURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/checkout/success?session_id=" + payment.SessionIDPlaceholder
}

func CancelURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/checkout/cancel"
}

// StartCheckout prices the user's cart at current product prices and opens a
// payment session for it. baseURL is "<scheme>://<host>" of the incoming request.
func (s *CheckoutService) StartCheckout(ctx context.Context, userID uuid.UUID, baseURL string) (*CheckoutSummary, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.start", "user_id", userID)

	cart, err := s.Cart.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	req := payment.SessionRequest{
		Currency:        s.currency(),
		SuccessURL:      SuccessURL(baseURL),
		CancelURL:       CancelURL(baseURL),
		ClientReference: userID.String(),
	}
	for _, line := range cart.Items {
		req.Items = append(req.Items, payment.LineItem{
			Name:        line.Product.Title,
			Description: line.Product.Description,
			UnitAmount:  money.MinorUnits(line.Product.Price),
			Quantity:    int64(line.Quantity),
		})
	}

	sess, err := s.Payments.CreateSession(ctx, req)
	if err != nil {
		checkoutSessionsTotal.WithLabelValues("error").Inc()
		l.Error("create payment session failed", "error", err)
		return nil, fmt.Errorf("%w: create payment session: %v", ErrUpstream, err)
	}
	checkoutSessionsTotal.WithLabelValues("ok").Inc()

	return &CheckoutSummary{
		SessionID:  sess.ID,
		PaymentURL: sess.URL,
		Items:      cart.Items,
		Total:      cart.Total,
	}, nil
}

// CompleteCheckout records the order for a paid session and empties the cart.
// The session id is the idempotency key: a repeated call for the same session
// returns the existing order with created=false.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, userID uuid.UUID, sessionID string) (order *models.Order, created bool, err error) {
	l := logging.FromContext(ctx).With("svc", "checkout.complete", "user_id", userID, "session_id", sessionID)

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || sessionID == payment.SessionIDPlaceholder {
		return nil, false, &ValidationError{Fields: FieldErrors{"session_id": "Checkout session id is required."}}
	}

	if existing, err := s.existing(ctx, userID, sessionID); err != nil || existing != nil {
		return existing, false, err
	}

	sess, err := s.Payments.GetSession(ctx, sessionID)
	if err != nil {
		l.Error("get payment session failed", "error", err)
		return nil, false, fmt.Errorf("%w: get payment session: %v", ErrUpstream, err)
	}
	if sess.ClientReference != userID.String() {
		return nil, false, fmt.Errorf("%w: checkout session belongs to another user", ErrForbidden)
	}
	if !sess.Paid {
		return nil, false, &ValidationError{Fields: FieldErrors{"session_id": "Checkout session is not paid."}}
	}

	user, err := s.Repo.UserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get user: %v", ErrUpstream, err)
	}

	cart, err := s.Cart.Resolve(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if len(cart.Items) == 0 {
		return nil, false, ErrEmptyCart
	}
	if sess.AmountTotal > 0 && sess.AmountTotal != money.MinorUnits(cart.Total) {
		l.Warn("cart total differs from paid amount", "paid_minor", sess.AmountTotal, "cart_total", money.Format(cart.Total))
	}

	order = snapshot(user, sessionID, cart)
	if err := s.Repo.CreateOrderAndClearCart(ctx, order); err != nil {
		// a concurrent callback for the same session may have won the unique key
		if existing, lookupErr := s.existing(ctx, userID, sessionID); lookupErr == nil && existing != nil {
			return existing, false, nil
		}
		l.Error("create order failed", "error", err)
		return nil, false, fmt.Errorf("%w: create order: %v", ErrUpstream, err)
	}
	ordersCreatedTotal.Inc()

	emit(ctx, s.Events, mykafka.TopicOrders, order.ID.String(), "order_created", orderEvent{
		OrderID:   order.ID,
		UserID:    userID,
		SessionID: sessionID,
		Items:     len(order.Items),
		Total:     money.Format(order.Total()),
	})
	s.notify(ctx, order)

	return order, true, nil
}

// existing returns the order already recorded for sessionID, or nil.
func (s *CheckoutService) existing(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error) {
	order, err := s.Repo.OrderBySession(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find order by session: %v", ErrUpstream, err)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: checkout session belongs to another user", ErrForbidden)
	}
	return order, nil
}

func (s *CheckoutService) notify(ctx context.Context, order *models.Order) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := s.Notifier.OrderPlaced(ctx, order); err != nil {
		logging.FromContext(ctx).Warn("order confirmation failed", "order_id", order.ID, "error", err)
	}
}

func (s *CheckoutService) currency() string {
	if s.Currency == "" {
		return "usd"
	}
	return s.Currency
}

func snapshot(user *models.User, sessionID string, cart *Cart) *models.Order {
	order := &models.Order{
		ID:                uuid.New(),
		UserID:            user.ID,
		Email:             user.Email,
		CheckoutSessionID: &sessionID,
		Items:             make([]models.OrderItem, 0, len(cart.Items)),
	}
	for i, line := range cart.Items {
		p := line.Product
		order.Items = append(order.Items, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   p.ID,
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Quantity:    line.Quantity,
			Position:    i,
		})
	}
	return order
}
