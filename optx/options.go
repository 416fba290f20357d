package optx

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Option tweaks binder behavior before decoding an option struct.
type Option[T any] func(*binder[T])

// WithDefaults seeds Bind with a default value that is cloned before the
// snapshot is decoded over it. Later calls override earlier defaults.
func WithDefaults[T any](value T) Option[T] {
	return func(b *binder[T]) {
		b.defaults = func() (T, error) {
			return value, nil
		}
	}
}

// WithDefaultFunc allows defaults to be generated lazily.
func WithDefaultFunc[T any](fn func() (T, error)) Option[T] {
	return func(b *binder[T]) {
		b.defaults = fn
	}
}

// WithTagName overrides the struct tag key used while decoding (default "opt").
func WithTagName[T any](tag string) Option[T] {
	return func(b *binder[T]) {
		if tag == "" {
			return
		}
		b.decoderConfig.TagName = tag
	}
}

// WithWeakTyping toggles WeaklyTypedInput behavior.
func WithWeakTyping[T any](enabled bool) Option[T] {
	return func(b *binder[T]) {
		b.decoderConfig.WeaklyTypedInput = enabled
	}
}

// WithStrictKeys makes unknown option keys a decode error.
func WithStrictKeys[T any]() Option[T] {
	return func(b *binder[T]) {
		b.decoderConfig.ErrorUnused = true
	}
}

// WithDecodeHooks appends custom decode hooks onto the binder.
func WithDecodeHooks[T any](hooks ...mapstructure.DecodeHookFunc) Option[T] {
	return func(b *binder[T]) {
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			b.decodeHooks = append(b.decodeHooks, hook)
		}
	}
}

// WithoutDefaultHooks disables the automatic hook set.
func WithoutDefaultHooks[T any]() Option[T] {
	return func(b *binder[T]) {
		b.useHookSet = false
	}
}

// WithValidator registers a validator invoked after decoding. Only one
// validator is allowed per Bind call.
func WithValidator[T any](validator func(*T) error) Option[T] {
	return func(b *binder[T]) {
		if validator == nil {
			return
		}
		if b.validator != nil {
			if b.optionErr == nil {
				b.optionErr = stageError("option", ErrOption, errValidatorRegistered)
			}
			return
		}
		b.validator = validator
	}
}

// DefaultDecodeHooks returns the hook set Bind composes unless disabled:
// duration strings, comma-separated lists, and RFC3339 timestamps.
func DefaultDecodeHooks() []mapstructure.DecodeHookFunc {
	return []mapstructure.DecodeHookFunc{
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
	}
}
