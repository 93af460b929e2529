package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/money"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

// CartLine is a cart entry joined with the current stored product.
type CartLine struct {
	Product  models.Product
	Quantity int
}

func (l CartLine) LineTotal() decimal.Decimal {
	return money.LineTotal(l.Product.Price, l.Quantity)
}

type Cart struct {
	Items []CartLine
	Total decimal.Decimal
}

type cartEvent struct {
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
}

// Resolve joins the user's cart with current products and prices it. Entries whose
// product no longer exists are removed from the cart.
func (s *CartService) Resolve(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.resolve", "user_id", userID)

	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: get cart: %v", ErrUpstream, err)
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve cart products: %v", ErrUpstream, err)
	}

	cart := &Cart{Items: make([]CartLine, 0, len(items)), Total: decimal.Zero}
	var dangling []uuid.UUID
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			dangling = append(dangling, it.ProductID)
			continue
		}
		line := CartLine{Product: p, Quantity: it.Quantity}
		cart.Items = append(cart.Items, line)
		cart.Total = cart.Total.Add(line.LineTotal())
	}

	if len(dangling) > 0 {
		l.Warn("pruning cart entries for deleted products", "count", len(dangling))
		if err := s.Repo.RemoveProductsFromCart(ctx, userID, dangling); err != nil {
			l.Error("prune cart failed", "error", err)
		}
	}
	return cart, nil
}

func (s *CartService) Add(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, &ValidationError{Fields: FieldErrors{"productId": "Product id is required."}}
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("%w: get product: %v", ErrUpstream, err)
	}

	item, err := s.Repo.AddToCart(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: add to cart: %v", ErrUpstream, err)
	}

	emit(ctx, s.Events, mykafka.TopicCart, userID.String(), "cart_item_added",
		cartEvent{UserID: userID, ProductID: productID, Quantity: item.Quantity})
	return item, nil
}

// Remove drops the product from the cart; removing an absent product is a no-op.
func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return &ValidationError{Fields: FieldErrors{"productId": "Product id is required."}}
	}
	if err := s.Repo.RemoveFromCart(ctx, userID, productID); err != nil {
		return fmt.Errorf("%w: remove from cart: %v", ErrUpstream, err)
	}

	emit(ctx, s.Events, mykafka.TopicCart, userID.String(), "cart_item_removed",
		cartEvent{UserID: userID, ProductID: productID})
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("%w: clear cart: %v", ErrUpstream, err)
	}

	emit(ctx, s.Events, mykafka.TopicCart, userID.String(), "cart_cleared", cartEvent{UserID: userID})
	return nil
}
