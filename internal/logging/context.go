package logging

import (
	"context"
	"slices"
)

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying key/value pairs. Both backends
// add them to every record logged with that context, ahead of the call's own
// args.
func ContextWith(ctx context.Context, args ...any) context.Context {
	return context.WithValue(ctx, fieldsKey{}, slices.Concat(fieldsFrom(ctx), args))
}

func fieldsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(fieldsKey{}).([]any)
	return f
}

// withContextFields prepends the pairs stored in ctx to args.
func withContextFields(ctx context.Context, args []any) []any {
	f := fieldsFrom(ctx)
	if len(f) == 0 {
		return args
	}
	return slices.Concat(f, args)
}
