package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

type published struct {
	Topic, Key, Type string
	Data             any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key, eventType string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{topic, key, eventType, data})
	return f.err
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeCache struct {
	items   map[uuid.UUID]models.Product
	deleted []uuid.UUID
	getErr  error
}

func newFakeCache() *fakeCache { return &fakeCache{items: map[uuid.UUID]models.Product{}} }

func (f *fakeCache) Get(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.items[id]
	if !ok {
		return nil, repo.ErrCacheMiss
	}
	return &p, nil
}

func (f *fakeCache) Set(_ context.Context, p *models.Product) error {
	f.items[p.ID] = *p
	return nil
}

func (f *fakeCache) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeIndex struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
	results []models.Product
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return f.err
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []models.Product, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.results)), f.results, nil
}

type fakeNotifier struct {
	orders []uuid.UUID
}

func (f *fakeNotifier) OrderPlaced(_ context.Context, o *models.Order) error {
	f.orders = append(f.orders, o.ID)
	return errors.New("mail server down")
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: testutil.NewDB(t)}
}

func mustUser(t *testing.T, r *repo.GormRepo, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x"}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func mustProduct(t *testing.T, r *repo.GormRepo, owner uuid.UUID, title, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:       title,
		Price:       decimal.RequireFromString(price),
		Description: "about " + title,
		ImageURL:    "/img/" + title + ".png",
		UserID:      owner,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func input(title, price string) ProductInput {
	return ProductInput{
		Title:       title,
		Price:       decimal.RequireFromString(price),
		Description: "a description",
		ImageURL:    "/img/x.png",
	}
}
