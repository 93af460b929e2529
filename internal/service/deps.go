package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Set(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductIndexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ProductSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key, eventType string, data any) error
}

type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
}

const sideEffectTimeout = 5 * time.Second

// emit publishes an event without letting a broker failure reach the caller.
func emit(ctx context.Context, pub EventPublisher, topic, key, eventType string, data any) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := pub.PublishEvent(ctx, topic, key, eventType, data); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", topic, "type", eventType, "error", err)
	}
}
