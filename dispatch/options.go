package dispatch

// Options is the caller-facing option mapping. Keys are caller-defined
// symbolic names; values are arbitrary. A key present with a nil value is
// treated as explicitly absent, which lets callers clear defaults.
type Options map[string]any

// Table maps discrete option values to transformation handlers.
type Table map[string]any

// Option tweaks a single Resolve call. Configuration is call-scoped; nothing
// persists between invocations.
type Option func(*settings)

type settings struct {
	defaults Options
	required bool
}

// WithDefaults merges the given values beneath the caller options. Caller
// entries win on key conflict, including entries explicitly set to nil.
func WithDefaults(defaults Options) Option {
	return func(s *settings) {
		s.defaults = defaults
	}
}

// WithRequired makes an absent resolved option value a fatal configuration
// error instead of the no-op path.
func WithRequired() Option {
	return func(s *settings) {
		s.required = true
	}
}
