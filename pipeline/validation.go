package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalid marks a request rejected by Validation.
var ErrInvalid = errors.New("invalid request")

// Validator is implemented by requests that can check their own fields.
type Validator interface {
	Validate() error
}

// Validation rejects requests whose Validate method fails, before any inner
// behavior or the handler runs. The returned error wraps ErrInvalid.
func Validation[Req, Resp any]() Behavior[Req, Resp] {
	return BehaviorFunc[Req, Resp](func(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
		if v, ok := any(req).(Validator); ok {
			if err := v.Validate(); err != nil {
				var zero Resp
				return zero, fmt.Errorf("%w: %w", ErrInvalid, err)
			}
		}
		return next(ctx)
	})
}
