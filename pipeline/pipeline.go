// Package pipeline is a minimal request dispatch pipeline.
//
// A Handler does the work for one request type. Behaviors wrap the handler in a
// fixed order: the first behavior passed to Chain is the outermost and sees the
// request first. Each behavior decides whether and when to call next.
//
//	h := pipeline.Chain(listProducts,
//	    pipeline.Logging[ListProducts, Page](log, "list_products"),
//	    readThrough, // cache-aside
//	    invalidate,  // version bumps
//	)
//	page, err := h(ctx, ListProducts{Page: 1})
package pipeline

import "context"

// Handler handles one request and produces its response.
type Handler[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Next invokes the rest of the pipeline.
type Next[Resp any] func(ctx context.Context) (Resp, error)

// Behavior wraps handler invocation for requests of type Req.
type Behavior[Req, Resp any] interface {
	Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc[Req, Resp any] func(ctx context.Context, req Req, next Next[Resp]) (Resp, error)

func (f BehaviorFunc[Req, Resp]) Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
	return f(ctx, req, next)
}

// Chain composes behaviors around h. behaviors[0] runs first.
// Nil behaviors are skipped.
func Chain[Req, Resp any](h Handler[Req, Resp], behaviors ...Behavior[Req, Resp]) Handler[Req, Resp] {
	out := h
	for i := len(behaviors) - 1; i >= 0; i-- {
		b := behaviors[i]
		if b == nil {
			continue
		}
		inner := out
		out = func(ctx context.Context, req Req) (Resp, error) {
			return b.Handle(ctx, req, func(ctx context.Context) (Resp, error) {
				return inner(ctx, req)
			})
		}
	}
	return out
}
