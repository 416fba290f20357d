package dispatch

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-errors"
)

var (
	optionsType = reflect.TypeOf(Options(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// callable wraps a caller-supplied handler after its signature has been
// inspected, so invocation only has to pick the argument shape.
type callable struct {
	fn        reflect.Value
	wantsOpts bool
	hasErr    bool
}

func newCallable(fn any) (*callable, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, errors.New(fmt.Sprintf("handler must be a function, got %T", fn), errors.CategoryBadInput).
			WithTextCode(TextCodeInvalidHandler)
	}

	t := v.Type()
	if t.IsVariadic() || (t.NumIn() != 1 && t.NumIn() != 2) {
		return nil, errors.New("Function must have an arity of either 1 or 2", errors.CategoryBadInput).
			WithTextCode(TextCodeInvalidArity).
			WithMetadata(map[string]any{
				"arity":    t.NumIn(),
				"variadic": t.IsVariadic(),
			})
	}

	wantsOpts := t.NumIn() == 2
	if wantsOpts && !optionsType.AssignableTo(t.In(1)) {
		return nil, errors.New(
			fmt.Sprintf("handler second parameter must accept %s, got %s", optionsType, t.In(1)),
			errors.CategoryBadInput,
		).WithTextCode(TextCodeInvalidHandler)
	}

	switch t.NumOut() {
	case 1:
	case 2:
		if !t.Out(1).Implements(errorType) {
			return nil, errors.New(
				fmt.Sprintf("handler second return value must be error, got %s", t.Out(1)),
				errors.CategoryBadInput,
			).WithTextCode(TextCodeInvalidHandler)
		}
	default:
		return nil, errors.New("handler must return a token or a token and an error", errors.CategoryBadInput).
			WithTextCode(TextCodeInvalidHandler).
			WithMetadata(map[string]any{
				"return_count": t.NumOut(),
			})
	}

	return &callable{
		fn:        v,
		wantsOpts: wantsOpts,
		hasErr:    t.NumOut() == 2,
	}, nil
}

// invoke runs the handler with the current token, passing the merged options
// snapshot only to binary handlers. Handler errors come back as-is.
func (c *callable) invoke(token any, opts Options) (any, error) {
	tv, err := conformToken(token, c.fn.Type().In(0))
	if err != nil {
		return nil, err
	}

	in := []reflect.Value{tv}
	if c.wantsOpts {
		in = append(in, reflect.ValueOf(opts))
	}

	out := c.fn.Call(in)
	if c.hasErr {
		if err, ok := out[1].Interface().(error); ok && err != nil {
			return nil, err
		}
	}
	return out[0].Interface(), nil
}

func conformToken(token any, want reflect.Type) (reflect.Value, error) {
	if token == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, errors.New(
			fmt.Sprintf("handler cannot accept a nil token as %s", want),
			errors.CategoryBadInput,
		).WithTextCode(TextCodeInvalidHandler)
	}

	v := reflect.ValueOf(token)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, errors.New(
			fmt.Sprintf("handler cannot accept token of type %T", token),
			errors.CategoryBadInput,
		).WithTextCode(TextCodeInvalidHandler).
			WithMetadata(map[string]any{
				"token_type": v.Type().String(),
				"param_type": want.String(),
			})
	}
	return v, nil
}
