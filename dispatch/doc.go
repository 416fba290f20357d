// Package dispatch implements a single conditional-dispatch primitive for
// option-driven value transformation.
//
// Given an opaque token, a set of caller options, and either one handler or a
// table of handlers keyed by option values, Resolve decides whether and how
// to transform the token: defaults are merged beneath the caller options,
// the driving option is looked up, and the matching handler(s) run as an
// ordered fold over the token. Library authors use it to expose keyword-style
// optional behaviors (filtering, includes, ordering, pagination) without
// hand-writing per-option branching.
//
// Handler catalog:
//   - unary: func(token T) T, optionally returning (T, error).
//   - binary: func(token T, opts Options) T, optionally returning (T, error).
//
// Any other parameter count is rejected with INVALID_ARITY. The dispatcher is
// stateless, synchronous, and never inspects the token; errors raised by
// handlers propagate unmodified.
package dispatch
