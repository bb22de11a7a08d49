package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/scopecache"
	"github.com/unkn0wn-root/scopecache/codec"
	"github.com/unkn0wn-root/scopecache/pipeline"
)

// Service dispatches catalog requests through their pipelines:
// Logging, Validation, then the cache behavior, then the handler.
type Service struct {
	list   pipeline.Handler[GetProductsQuery, Page]
	get    pipeline.Handler[GetProductQuery, Product]
	create pipeline.Handler[CreateProductCommand, Product]
	update pipeline.Handler[UpdateProductCommand, Product]
	remove pipeline.Handler[DeleteProductCommand, Product]
	evict  pipeline.Handler[EvictProductCommand, Evicted]

	listCache *scopecache.ReadThrough[GetProductsQuery, Page]
}

// NewService wires the pipelines. codecName selects the value codec
// (see codec.ForName).
func NewService(c *scopecache.Cache, repo Repository, log *zap.Logger, codecName string) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h := Handlers{Repo: repo}

	pageCodec, err := codec.ForName[Page](codecName)
	if err != nil {
		return nil, err
	}
	productCodec, err := codec.ForName[Product](codecName)
	if err != nil {
		return nil, err
	}

	listRT, err := scopecache.NewReadThrough[GetProductsQuery, Page](c, pageCodec)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	getRT, err := scopecache.NewReadThrough[GetProductQuery, Product](c, productCodec)
	if err != nil {
		return nil, fmt.Errorf("detail cache: %w", err)
	}

	s := &Service{listCache: listRT}
	s.list = pipeline.Chain(h.ListProducts,
		pipeline.Logging[GetProductsQuery, Page](log, "get_products"),
		pipeline.Validation[GetProductsQuery, Page](),
		pipeline.Behavior[GetProductsQuery, Page](listRT),
	)
	s.get = pipeline.Chain(h.GetProduct,
		pipeline.Logging[GetProductQuery, Product](log, "get_product"),
		pipeline.Validation[GetProductQuery, Product](),
		pipeline.Behavior[GetProductQuery, Product](getRT),
	)

	if s.create, err = command(c, log, "create_product", h.CreateProduct); err != nil {
		return nil, err
	}
	if s.update, err = command(c, log, "update_product", h.UpdateProduct); err != nil {
		return nil, err
	}
	if s.remove, err = command(c, log, "delete_product", h.DeleteProduct); err != nil {
		return nil, err
	}
	if s.evict, err = command(c, log, "evict_product", h.EvictProduct); err != nil {
		return nil, err
	}
	return s, nil
}

func command[Req, Resp any](c *scopecache.Cache, log *zap.Logger, name string, h pipeline.Handler[Req, Resp]) (pipeline.Handler[Req, Resp], error) {
	inv, err := scopecache.NewInvalidate[Req, Resp](c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return pipeline.Chain(h,
		pipeline.Logging[Req, Resp](log, name),
		pipeline.Validation[Req, Resp](),
		pipeline.Behavior[Req, Resp](inv),
	), nil
}

func (s *Service) ListProducts(ctx context.Context, q GetProductsQuery) (Page, error) {
	return s.list(ctx, q)
}

// ListKey returns the cache key q currently maps to.
func (s *Service) ListKey(ctx context.Context, q GetProductsQuery) (string, error) {
	key, _, err := s.listCache.Key(ctx, q)
	return key, err
}

func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.get(ctx, GetProductQuery{ID: id})
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	return s.create(ctx, CreateProductCommand{ProductInput: in})
}

// UpdateProduct bumps the list scopes and then evicts the product's detail entry.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	p, err := s.update(ctx, UpdateProductCommand{ID: id, ProductInput: in})
	if err != nil {
		return p, err
	}
	_, err = s.evict(ctx, EvictProductCommand{ID: id})
	return p, err
}

// DeleteProduct bumps ListScope and then evicts the product's detail entry.
func (s *Service) DeleteProduct(ctx context.Context, id string) (Product, error) {
	p, err := s.remove(ctx, DeleteProductCommand{ID: id})
	if err != nil {
		return p, err
	}
	_, err = s.evict(ctx, EvictProductCommand{ID: id})
	return p, err
}

// EvictProduct drops the cached detail of one product.
func (s *Service) EvictProduct(ctx context.Context, id string) error {
	_, err := s.evict(ctx, EvictProductCommand{ID: id})
	return err
}
