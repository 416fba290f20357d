// Package optx decodes merged option snapshots into caller-defined structs.
//
// Binary handlers receive a dispatch.Options map; optx.Bind gives them typed
// access to it without hand-written lookups: defaults are cloned, the map is
// decoded via mapstructure (weak typing, `opt` struct tags), and an optional
// validator runs on the result.
//
// Option catalog:
//   - Defaults: WithDefaults, WithDefaultFunc.
//   - Decoder behavior: WithTagName, WithWeakTyping, WithStrictKeys,
//     WithDecodeHooks, WithoutDefaultHooks.
//   - Validation: WithValidator.
//
// Failures wrap one of the ErrDefaults/ErrDecode/ErrValidate/ErrOption
// sentinels so callers can branch with errors.Is.
package optx
