package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/addressbook/datastores"
)

type handler[I, O any] = func(context.Context, *I) (*O, error)

// keyed inputs name the address an operation works on.
type keyed interface{ addressKey() string }

type keyContextKey struct{}

// KeyFromContext returns the address key of the operation handling ctx, as
// seen by the error handler.
func KeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(keyContextKey{}).(string)
	return key, ok
}

// handlerWithErrorHandler calls do with every error handler returns,
// after mapping store errors to their HTTP status.
func handlerWithErrorHandler[I, O any](handler handler[I, O], do func(context.Context, error)) handler[I, O] {
	return func(ctx context.Context, i *I) (*O, error) {
		o, err := handler(ctx, i)
		if err != nil {
			err = storeError(err)
			if do != nil {
				if k, ok := any(i).(keyed); ok {
					ctx = context.WithValue(ctx, keyContextKey{}, k.addressKey())
				}
				do(ctx, err)
			}
		}
		return o, err
	}
}

// storeError maps the store sentinel errors to huma status errors.
func storeError(err error) error {
	switch {
	case errors.Is(err, ds.ErrObjectNotFound):
		return huma.Error404NotFound("key not found", err)
	case errors.Is(err, ds.ErrObjectExists):
		return huma.Error409Conflict("entry exists", err)
	default:
		return err
	}
}

func opErrors(codes ...int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Errors = codes }
}
