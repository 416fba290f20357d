package dispatch

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-errors"
)

// Resolve merges defaults beneath options, looks up name in the merged set,
// and conditionally transforms token:
//
//   - absent value (missing or nil, no WithRequired): token is returned
//     unchanged and no handler runs.
//   - fn is a single handler: it runs once with the token and, when binary,
//     the merged options snapshot. The option value itself stays in the
//     snapshot for the handler to inspect.
//   - fn is a Table (or plain map[string]any): the option value is
//     normalized to an ordered symbol sequence and the mapped handlers run
//     left to right, each receiving its predecessor's output as the token.
//     An explicit empty sequence is a deliberate clear: present for the
//     required check, zero handlers run.
//
// All configuration mistakes (missing required option, unmapped symbol,
// invalid handler arity) surface immediately as categorized errors; handler
// errors propagate unmodified.
func Resolve[T any](token T, options Options, name string, fn any, opts ...Option) (T, error) {
	var zero T

	s := &settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	merged := mergeOptions(s.defaults, options)

	raw, present := merged[name]
	if !present || raw == nil {
		if s.required {
			return zero, errors.New(
				fmt.Sprintf("required option %q is missing", name),
				errors.CategoryValidation,
			).WithTextCode(TextCodeMissingRequiredOption).
				WithMetadata(map[string]any{
					"option": name,
				})
		}
		return token, nil
	}

	table, single, err := resolveTarget(fn)
	if err != nil {
		return zero, err
	}

	snapshot, err := snapshotOptions(merged)
	if err != nil {
		return zero, err
	}

	if single != nil {
		out, err := single.invoke(token, snapshot)
		if err != nil {
			return zero, err
		}
		return assertToken[T](out)
	}

	symbols, err := normalizeSymbols(name, raw)
	if err != nil {
		return zero, err
	}

	var current any = token
	for _, symbol := range symbols {
		entry, ok := table[symbol]
		if !ok {
			return zero, errors.New(
				fmt.Sprintf("no handler mapped for option %q value %q", name, symbol),
				errors.CategoryBadInput,
			).WithTextCode(TextCodeUnmappedOptionValue).
				WithMetadata(map[string]any{
					"option": name,
					"value":  symbol,
					"known":  tableKeys(table),
				})
		}

		handler, err := newCallable(entry)
		if err != nil {
			return zero, err
		}

		next, err := handler.invoke(current, snapshot)
		if err != nil {
			return zero, err
		}
		current = next
	}

	return assertToken[T](current)
}

// resolveTarget splits fn into its two cases once, up front: a symbol table
// or a single handler.
func resolveTarget(fn any) (Table, *callable, error) {
	switch t := fn.(type) {
	case nil:
		return nil, nil, errors.New("handler cannot be nil", errors.CategoryBadInput).
			WithTextCode(TextCodeInvalidHandler)
	case Table:
		return t, nil, nil
	case map[string]any:
		return Table(t), nil, nil
	default:
		single, err := newCallable(fn)
		if err != nil {
			return nil, nil, err
		}
		return nil, single, nil
	}
}

// normalizeSymbols turns the resolved option value into an ordered symbol
// sequence, preserving caller-given order. A single symbol becomes a
// one-element sequence.
func normalizeSymbols(name string, raw any) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		symbols := make([]string, 0, len(v))
		for _, item := range v {
			symbol, ok := item.(string)
			if !ok {
				return nil, invalidOptionValue(name, item)
			}
			symbols = append(symbols, symbol)
		}
		return symbols, nil
	default:
		return nil, invalidOptionValue(name, raw)
	}
}

func invalidOptionValue(name string, value any) error {
	return errors.New(
		fmt.Sprintf("option %q value must be a string or a list of strings", name),
		errors.CategoryBadInput,
	).WithTextCode(TextCodeInvalidOptionValue).
		WithMetadata(map[string]any{
			"option":     name,
			"value_type": fmt.Sprintf("%T", value),
		})
}

func assertToken[T any](value any) (T, error) {
	var zero T
	if value == nil {
		return zero, nil
	}
	token, ok := value.(T)
	if !ok {
		return zero, errors.New(
			fmt.Sprintf("handler returned %T, which is not assignable to the token type", value),
			errors.CategoryBadInput,
		).WithTextCode(TextCodeInvalidHandler)
	}
	return token, nil
}

func tableKeys(table Table) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
