package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/unkn0wn-root/scopecache/keys"
)

const (
	// ListScope is bumped by every product mutation.
	ListScope = "product:list:ver"

	listTag   = "product:list"
	detailTag = "product:detail"

	listTTL   = 5 * time.Minute
	detailTTL = time.Minute

	maxPageSize = 200
	// maxPage keeps (page-1)*size within int for every valid size.
	maxPage = math.MaxInt / maxPageSize
)

// NameScope is the list scope of one name filter.
func NameScope(name string) string {
	return ListScope + ":name:" + strings.ToLower(strings.TrimSpace(name))
}

// CategoryScope is the list scope of one category.
func CategoryScope(category string) string {
	return ListScope + ":category:" + normalizeCategory(category)
}

// DetailKey is the cache key of one product.
func DetailKey(id string) string { return detailTag + ":" + id }

// GetProductsQuery lists one page of in-stock products.
type GetProductsQuery struct {
	Page     int
	Size     int
	SortBy   string
	Desc     bool
	Name     string
	Category string
}

func (q GetProductsQuery) BaseKey() string {
	return keys.BuildBaseKey(listTag, keys.NewSignature().
		Int("page", int64(q.Page)).
		Int("size", int64(q.Size)).
		Str("sort", q.SortBy).
		Bool("desc", q.Desc).
		Fold("name", q.Name).
		Fold("category", q.Category))
}

// VersionScopes: every list depends on ListScope; filtered lists also depend
// on the scope of their filter.
func (q GetProductsQuery) VersionScopes() keys.Scopes {
	s := keys.NewScopes(ListScope)
	if strings.TrimSpace(q.Name) != "" {
		s = append(s, NameScope(q.Name))
	}
	if strings.TrimSpace(q.Category) != "" {
		s = append(s, CategoryScope(q.Category))
	}
	return s
}

func (GetProductsQuery) CacheTTL() time.Duration { return listTTL }

func (q GetProductsQuery) Validate() error {
	var errs []error
	if q.Page < 1 || q.Page > maxPage {
		errs = append(errs, fmt.Errorf("page must be between 1 and %d", maxPage))
	}
	if q.Size < 1 || q.Size > maxPageSize {
		errs = append(errs, errors.New("size must be between 1 and 200"))
	}
	if len(q.SortBy) > 50 {
		errs = append(errs, errors.New("sort must be at most 50 characters"))
	}
	if len(q.Name) > 200 {
		errs = append(errs, errors.New("name must be at most 200 characters"))
	}
	return errors.Join(errs...)
}

func (q GetProductsQuery) params() ListParams {
	return ListParams{Page: q.Page, Size: q.Size, SortBy: q.SortBy, Desc: q.Desc, Name: q.Name, Category: q.Category}
}

// GetProductQuery reads one product under a fixed detail key.
type GetProductQuery struct{ ID string }

func (q GetProductQuery) CacheKey() string      { return DetailKey(q.ID) }
func (GetProductQuery) CacheTTL() time.Duration { return detailTTL }

func (q GetProductQuery) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return errors.New("id is required")
	}
	return nil
}

// ProductInput is the mutable part of a product.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageFile   string   `json:"image_file"`
	Category    []string `json:"category"`
	PriceCents  int64    `json:"price_cents"`
	Quantity    int      `json:"quantity"`
}

func (in ProductInput) validate() error {
	var errs []error
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(in.Name) > 200 {
		errs = append(errs, errors.New("name must be at most 200 characters"))
	}
	if in.PriceCents < 0 {
		errs = append(errs, errors.New("price must not be negative"))
	}
	if in.Quantity < 0 {
		errs = append(errs, errors.New("quantity must not be negative"))
	}
	for _, c := range in.Category {
		if normalizeCategory(c) == "" {
			errs = append(errs, errors.New("category must not be blank"))
			break
		}
	}
	return errors.Join(errs...)
}

func (in ProductInput) product(id string) Product {
	return Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImageFile:   in.ImageFile,
		Category:    in.Category,
		PriceCents:  in.PriceCents,
		Quantity:    in.Quantity,
	}
}

// categoryScopes returns ListScope followed by one scope per distinct category.
func categoryScopes(categories []string) keys.Scopes {
	s := keys.NewScopes(ListScope)
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		sc := CategoryScope(c)
		if _, dup := seen[sc]; dup {
			continue
		}
		seen[sc] = struct{}{}
		s = append(s, sc)
	}
	return s
}

type CreateProductCommand struct{ ProductInput }

func (c CreateProductCommand) VersionScopesToBump() keys.Scopes {
	return categoryScopes(c.Category)
}

func (c CreateProductCommand) Validate() error { return c.validate() }

type UpdateProductCommand struct {
	ID string
	ProductInput
}

func (c UpdateProductCommand) VersionScopesToBump() keys.Scopes {
	return categoryScopes(c.Category)
}

func (c UpdateProductCommand) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.Join(errors.New("id is required"), c.validate())
	}
	return c.validate()
}

// DeleteProductCommand bumps ListScope. It also names the detail key, but
// the bump takes precedence, so the detail entry is dropped separately with
// EvictProductCommand.
type DeleteProductCommand struct{ ID string }

func (c DeleteProductCommand) VersionScopesToBump() keys.Scopes { return keys.NewScopes(ListScope) }
func (c DeleteProductCommand) InvalidateKey() string            { return DetailKey(c.ID) }

func (c DeleteProductCommand) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("id is required")
	}
	return nil
}

// EvictProductCommand deletes the cached detail of one product.
type EvictProductCommand struct{ ID string }

func (c EvictProductCommand) InvalidateKey() string { return DetailKey(c.ID) }

func (c EvictProductCommand) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("id is required")
	}
	return nil
}

// Evicted is the response of EvictProductCommand.
type Evicted struct {
	ID string `json:"id"`
}
