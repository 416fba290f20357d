package optx

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-dispatch/dispatch"
	"github.com/mitchellh/copystructure"
)

const (
	stageDefaults = "defaults"
	stageDecode   = "decode"
	stageValidate = "validate"
)

var (
	// ErrDefaults wraps failures when generating or cloning default option structs.
	ErrDefaults = errors.New("optx: defaults stage failed")
	// ErrDecode wraps mapstructure decode failures.
	ErrDecode = errors.New("optx: decode stage failed")
	// ErrValidate wraps validator-reported errors.
	ErrValidate = errors.New("optx: validate stage failed")
	// ErrOption indicates a misconfigured Bind option (e.g., duplicate validator).
	ErrOption = errors.New("optx: option configuration failed")
)

var errValidatorRegistered = errors.New("validator already registered")

// StageError reports which Bind stage failed while staying errors.Is/As friendly.
type StageError struct {
	Stage string
	Base  error
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *StageError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if errors.Is(e.Base, target) {
		return true
	}
	return errors.Is(e.Err, target)
}

func stageError(stage string, base, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Base: base, Err: err}
}

type binder[T any] struct {
	defaults      func() (T, error)
	decodeHooks   []mapstructure.DecodeHookFunc
	decoderConfig mapstructure.DecoderConfig
	validator     func(*T) error
	useHookSet    bool
	optionErr     error
}

func newBinder[T any]() *binder[T] {
	return &binder[T]{
		decoderConfig: mapstructure.DecoderConfig{
			TagName:          "opt",
			WeaklyTypedInput: true,
		},
		useHookSet: true,
	}
}

// Bind decodes an options snapshot into T: clone defaults, decode the map
// with composed hooks, then run the validator if one was registered.
func Bind[T any](opts dispatch.Options, options ...Option[T]) (T, error) {
	b := newBinder[T]()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}

	var zero T
	if b.optionErr != nil {
		return zero, b.optionErr
	}

	result, err := b.applyDefaults()
	if err != nil {
		return zero, err
	}

	if err := b.decode(opts, &result); err != nil {
		return zero, err
	}

	if b.validator != nil {
		if err := b.validator(&result); err != nil {
			return zero, stageError(stageValidate, ErrValidate, err)
		}
	}

	return result, nil
}

func (b *binder[T]) applyDefaults() (T, error) {
	var zero T
	if b.defaults == nil {
		return zero, nil
	}
	value, err := b.defaults()
	if err != nil {
		return zero, stageError(stageDefaults, ErrDefaults, err)
	}
	cloned, err := copystructure.Copy(value)
	if err != nil {
		return zero, stageError(stageDefaults, ErrDefaults, err)
	}
	casted, ok := cloned.(T)
	if !ok {
		return zero, stageError(stageDefaults, ErrDefaults,
			fmt.Errorf("optx: cloned defaults %T do not match target type", cloned))
	}
	return casted, nil
}

func (b *binder[T]) decode(opts dispatch.Options, result *T) error {
	config := b.decoderConfig
	config.Result = result
	config.DecodeHook = b.composeDecodeHooks()

	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return stageError(stageDecode, ErrDecode, err)
	}
	if err := decoder.Decode(map[string]any(opts)); err != nil {
		return stageError(stageDecode, ErrDecode, err)
	}
	return nil
}

func (b *binder[T]) composeDecodeHooks() mapstructure.DecodeHookFunc {
	hooks := make([]mapstructure.DecodeHookFunc, 0, len(b.decodeHooks)+3)
	if b.useHookSet {
		hooks = append(hooks, DefaultDecodeHooks()...)
	}
	hooks = append(hooks, b.decodeHooks...)
	if len(hooks) == 0 {
		return nil
	}
	if len(hooks) == 1 {
		return hooks[0]
	}
	return mapstructure.ComposeDecodeHookFunc(hooks...)
}
