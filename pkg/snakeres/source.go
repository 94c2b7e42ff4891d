package snakeres

import (
	"context"
	"reflect"

	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
)

// Source is what a Register* call stores under a tag: either construction
// parameters (MeshParams, ShaderParams, ...) or a pre-built value wrapped
// with Adopt.
type Source[T any] interface {
	build(ctx context.Context, a *Assets, category, tag string) (T, error)
	adopted() bool
}

// Prebuilt hands an already constructed resource to the registry.
type Prebuilt[T any] struct {
	Value T
}

// Adopt wraps a pre-built resource. The registry stores v as is and owns it
// from then on.
func Adopt[T any](v T) Prebuilt[T] {
	return Prebuilt[T]{Value: v}
}

func (p Prebuilt[T]) build(_ context.Context, _ *Assets, category, tag string) (T, error) {
	if isNil(p.Value) {
		var zero T
		return zero, &reserrors.InvalidArgumentError{
			Category: category,
			Tag:      tag,
			Message:  "adopted " + category + " is nil",
		}
	}
	return p.Value, nil
}

func (p Prebuilt[T]) adopted() bool { return true }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
