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
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Cache  ProductCache
	Index  ProductIndexer
	Search ProductSearcher
	Events EventPublisher
}

type ProductInput struct {
	Title       string
	Price       decimal.Decimal
	Description string
	ImageURL    string
}

type productEvent struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Price  string    `json:"price"`
	UserID uuid.UUID `json:"userId"`
}

func newProductEvent(p *models.Product) productEvent {
	return productEvent{ID: p.ID, Title: p.Title, Price: money.Format(p.Price), UserID: p.UserID}
}

func (s *CatalogService) ListProducts(ctx context.Context, page int) ([]models.Product, util.Page, error) {
	if page < 1 {
		page = 1
	}
	from, limit := util.Calculate(page, util.PageSize)

	total, items, err := s.Repo.GetProducts(ctx, from, limit)
	if err != nil {
		return nil, util.Page{}, fmt.Errorf("%w: list products: %v", ErrUpstream, err)
	}
	return items, util.NewPage(page, total), nil
}

// GetProduct reads through the cache when one is configured. Cache errors
// fall through to the database.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.get", "product_id", id)

	if s.Cache != nil {
		p, err := s.Cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repo.ErrCacheMiss) {
			l.Warn("product cache read failed", "error", err)
		}
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get product: %v", ErrUpstream, err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, p); err != nil {
			l.Warn("product cache write failed", "error", err)
		}
	}
	return p, nil
}

// SearchProducts queries the search index, or the database when no index is
// configured or the index is unavailable.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page int) ([]models.Product, util.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, util.Page{}, &ValidationError{Fields: FieldErrors{"q": "Search query is required."}}
	}
	if page < 1 {
		page = 1
	}
	from, limit := util.Calculate(page, util.PageSize)

	if s.Search != nil {
		total, items, err := s.Search.Search(ctx, query, from, limit)
		if err == nil {
			return items, util.NewPage(page, total), nil
		}
		logging.FromContext(ctx).Warn("search index failed, falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, query, from, limit)
	if err != nil {
		return nil, util.Page{}, fmt.Errorf("%w: search products: %v", ErrUpstream, err)
	}
	return items, util.NewPage(page, total), nil
}

func (s *CatalogService) OwnerProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	items, err := s.Repo.ProductsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: owner products: %v", ErrUpstream, err)
	}
	return items, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, userID uuid.UUID, in ProductInput) (*models.Product, error) {
	price, err := storedPrice(in.Price)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Title:       in.Title,
		Price:       price,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		UserID:      userID,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: create product: %v", ErrUpstream, err)
	}

	s.reindex(ctx, p)
	emit(ctx, s.Events, mykafka.TopicProducts, p.ID.String(), "product_created", newProductEvent(p))
	return p, nil
}

// UpdateProduct edits a product owned by userID. An empty ImageURL keeps the current image.
func (s *CatalogService) UpdateProduct(ctx context.Context, userID, id uuid.UUID, in ProductInput) (*models.Product, error) {
	price, err := storedPrice(in.Price)
	if err != nil {
		return nil, err
	}

	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	p.Title = in.Title
	p.Price = price
	p.Description = in.Description
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}

	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: update product: %v", ErrUpstream, err)
	}

	s.evict(ctx, id)
	s.reindex(ctx, p)
	emit(ctx, s.Events, mykafka.TopicProducts, p.ID.String(), "product_updated", newProductEvent(p))
	return p, nil
}

// DeleteProduct removes a product owned by userID and drops it from every cart.
func (s *CatalogService) DeleteProduct(ctx context.Context, userID, id uuid.UUID) error {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return fmt.Errorf("%w: delete product: %v", ErrUpstream, err)
	}

	s.evict(ctx, id)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search index delete failed", "product_id", id, "error", err)
		}
	}
	emit(ctx, s.Events, mykafka.TopicProducts, id.String(), "product_deleted", newProductEvent(p))
	return nil
}

func (s *CatalogService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get product: %v", ErrUpstream, err)
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("%w: product %s belongs to another user", ErrForbidden, id)
	}
	return p, nil
}

func (s *CatalogService) evict(ctx context.Context, id uuid.UUID) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("product cache evict failed", "product_id", id, "error", err)
	}
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search index update failed", "product_id", p.ID, "error", err)
	}
}

// storedPrice rounds to cents first so a sub-cent amount cannot be stored as zero.
func storedPrice(price decimal.Decimal) (decimal.Decimal, error) {
	price = price.Round(2)
	if !price.IsPositive() {
		return decimal.Zero, &ValidationError{Fields: FieldErrors{"price": "Price must be a positive number."}}
	}
	return price, nil
}
