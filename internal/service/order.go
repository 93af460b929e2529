package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/invoice"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Invoices *invoice.Generator
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.Repo.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrUpstream, err)
	}
	return orders, nil
}

// OwnedOrder loads an order and checks that userID placed it.
func (s *OrderService) OwnedOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get order: %v", ErrUpstream, err)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", ErrForbidden, orderID)
	}
	return order, nil
}

// WriteInvoice renders the invoice to the invoice directory and w at once.
// Callers must have checked ownership with OwnedOrder first.
func (s *OrderService) WriteInvoice(order *models.Order, w io.Writer) error {
	if err := s.Invoices.Stream(order, w); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	invoicesGeneratedTotal.Inc()
	return nil
}
