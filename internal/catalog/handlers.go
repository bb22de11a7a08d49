package catalog

import (
	"context"
	"fmt"
)

// Handlers are the uncached request handlers over a Repository.
type Handlers struct {
	Repo Repository
}

// ListProducts returns ErrNotFound when no product matches, like an empty
// lookup, so empty pages are never cached.
func (h Handlers) ListProducts(ctx context.Context, q GetProductsQuery) (Page, error) {
	items, total, err := h.Repo.List(ctx, q.params())
	if err != nil {
		return Page{}, fmt.Errorf("list products: %w", err)
	}
	if total == 0 || len(items) == 0 {
		return Page{}, ErrNotFound
	}
	return Page{PageIndex: q.Page, PageSize: q.Size, Count: total, Data: items}, nil
}

func (h Handlers) GetProduct(ctx context.Context, q GetProductQuery) (Product, error) {
	return h.Repo.Get(ctx, q.ID)
}

func (h Handlers) CreateProduct(ctx context.Context, c CreateProductCommand) (Product, error) {
	return h.Repo.Create(ctx, c.product(""))
}

func (h Handlers) UpdateProduct(ctx context.Context, c UpdateProductCommand) (Product, error) {
	return h.Repo.Update(ctx, c.product(c.ID))
}

func (h Handlers) DeleteProduct(ctx context.Context, c DeleteProductCommand) (Product, error) {
	return h.Repo.Delete(ctx, c.ID)
}

// EvictProduct does nothing itself; the cache behavior deletes the key.
func (h Handlers) EvictProduct(_ context.Context, c EvictProductCommand) (Evicted, error) {
	return Evicted{ID: c.ID}, nil
}
