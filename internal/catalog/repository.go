package catalog

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"
)

// ListParams selects one page of products.
type ListParams struct {
	Page, Size int
	SortBy     string // name, price, quantity, created_at; empty => created_at
	Desc       bool
	Name       string // substring, case-insensitive
	Category   string // exact, case-insensitive
}

// Repository stores products. Listing only returns products in stock.
type Repository interface {
	List(ctx context.Context, p ListParams) ([]Product, int64, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id string) (Product, error)
}

// Memory is an in-process Repository.
type Memory struct {
	mu       sync.RWMutex
	products map[string]Product
	seq      int
	now      func() time.Time
}

var _ Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{products: make(map[string]Product), now: time.Now}
}

func (m *Memory) List(ctx context.Context, p ListParams) ([]Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	name := strings.ToLower(strings.TrimSpace(p.Name))
	category := normalizeCategory(p.Category)

	m.mu.RLock()
	matched := make([]Product, 0, len(m.products))
	for _, pr := range m.products {
		if pr.Quantity <= 0 {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(pr.Name), name) {
			continue
		}
		if category != "" && !hasCategory(pr, category) {
			continue
		}
		matched = append(matched, clone(pr))
	}
	m.mu.RUnlock()

	less := lessFunc(p.SortBy)
	slices.SortFunc(matched, func(a, b Product) int {
		c := less(a, b)
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if p.Desc {
			return -c
		}
		return c
	})

	total := int64(len(matched))
	if p.Page < 1 || p.Size < 1 || p.Page-1 > (math.MaxInt-p.Size)/p.Size {
		return []Product{}, total, nil
	}
	start := (p.Page - 1) * p.Size
	if start >= len(matched) {
		return []Product{}, total, nil
	}
	end := min(start+p.Size, len(matched))
	return matched[start:end], total, nil
}

func (m *Memory) Get(ctx context.Context, id string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(p), nil
}

func (m *Memory) Create(ctx context.Context, p Product) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = fmt.Sprintf("p%06d", m.seq)
	p.CreatedAt = m.now().UTC()
	p.UpdatedAt = p.CreatedAt
	p.Category = slices.Clone(p.Category)
	m.products[p.ID] = p
	return clone(p), nil
}

func (m *Memory) Update(ctx context.Context, p Product) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.products[p.ID]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = m.now().UTC()
	p.Category = slices.Clone(p.Category)
	m.products[p.ID] = p
	return clone(p), nil
}

func (m *Memory) Delete(ctx context.Context, id string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.products, id)
	return p, nil
}

func lessFunc(sortBy string) func(a, b Product) int {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "name":
		return func(a, b Product) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case "price":
		return func(a, b Product) int { return cmp.Compare(a.PriceCents, b.PriceCents) }
	case "quantity":
		return func(a, b Product) int { return cmp.Compare(a.Quantity, b.Quantity) }
	default:
		return func(a, b Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

func hasCategory(p Product, category string) bool {
	for _, c := range p.Category {
		if normalizeCategory(c) == category {
			return true
		}
	}
	return false
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func clone(p Product) Product {
	p.Category = slices.Clone(p.Category)
	return p
}
