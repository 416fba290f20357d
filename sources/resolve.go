package sources

import (
	"fmt"
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/knadh/koanf/v2"
)

// Resolver transforms the loaded option set in place between load and
// hand-off. Group.Load runs resolvers repeatedly until the set converges or
// the pass budget is spent.
type Resolver interface {
	Resolve(k *koanf.Koanf) *koanf.Koanf
}

type delimiters struct {
	Start string
	End   string
}

func toString(v any) string {
	return fmt.Sprintf("%v", v)
}

type variables struct {
	delims *delimiters
}

// Variables substitutes ${path} style references with the value stored at
// that path in the loaded set. Empty delimiters default to "${" and "}".
func Variables(start, end string) Resolver {
	if start == "" {
		start = "${"
	}
	if end == "" {
		end = "}"
	}
	return &variables{delims: &delimiters{Start: start, End: end}}
}

func (s variables) Resolve(k *koanf.Koanf) *koanf.Koanf {
	if k == nil {
		return k
	}
	for key, val := range k.All() {
		str, ok := val.(string)
		if !ok {
			continue
		}
		s.resolveKey(key, str, k)
	}
	return k
}

func (s variables) resolveKey(key, val string, k *koanf.Koanf) {
	start := strings.Index(val, s.delims.Start)
	if start == -1 {
		return
	}
	rest := val[start+len(s.delims.Start):]
	end := strings.Index(rest, s.delims.End)
	if end == -1 {
		return
	}

	path := rest[:end]
	if path == "" || path == key || !k.Exists(path) {
		return
	}

	replacement := k.Get(path)
	if start == 0 && end+len(s.delims.End) == len(rest) {
		// the whole value is one reference, keep the referenced type
		k.Set(key, replacement)
		return
	}
	k.Set(key, val[:start]+toString(replacement)+rest[end+len(s.delims.End):])
}

// EvalErrorHandler customizes expression failure handling. Return true to
// mark the error handled.
type EvalErrorHandler func(key, expr string, err error, k *koanf.Koanf) bool

type expression struct {
	delims    *delimiters
	evaluator opts.Evaluator
	onError   EvalErrorHandler
}

// Expression evaluates values fully wrapped by delimiters (default {{ }})
// with the expr evaluator; the expression sees the loaded set as its
// snapshot. Failed evaluations leave the value unchanged.
func Expression(start, end string) Resolver {
	return ExpressionWithEvaluator(start, end, nil, nil)
}

// ExpressionWithEvaluator allows a custom evaluator and error handler.
func ExpressionWithEvaluator(start, end string, eval opts.Evaluator, onErr EvalErrorHandler) Resolver {
	if eval == nil {
		eval = opts.NewExprEvaluator()
	}
	if onErr == nil {
		onErr = OnEvalLeaveUnchanged()
	}
	if start == "" {
		start = "{{"
	}
	if end == "" {
		end = "}}"
	}

	return &expression{
		delims:    &delimiters{Start: start, End: end},
		evaluator: eval,
		onError:   onErr,
	}
}

func (s expression) Resolve(k *koanf.Koanf) *koanf.Koanf {
	if k == nil {
		return k
	}

	for key, val := range k.All() {
		str, ok := val.(string)
		if !ok {
			continue
		}
		expr, ok := s.fullMatch(str)
		if !ok {
			continue
		}

		expr = strings.TrimSpace(expr)
		result, err := s.evaluator.Evaluate(opts.RuleContext{Snapshot: k.Raw()}, expr)
		if err != nil {
			s.onError(key, expr, err, k)
			continue
		}

		k.Set(key, result)
	}
	return k
}

func (s expression) fullMatch(input string) (string, bool) {
	if !strings.HasPrefix(input, s.delims.Start) || !strings.HasSuffix(input, s.delims.End) {
		return "", false
	}
	start := len(s.delims.Start)
	end := len(input) - len(s.delims.End)
	if end < start {
		return "", false
	}
	return input[start:end], true
}

// OnEvalLeaveUnchanged keeps the original value.
func OnEvalLeaveUnchanged() EvalErrorHandler {
	return func(string, string, error, *koanf.Koanf) bool {
		return true
	}
}

// OnEvalRemove deletes the key from the set.
func OnEvalRemove() EvalErrorHandler {
	return func(key string, _ string, _ error, k *koanf.Koanf) bool {
		if k != nil {
			k.Delete(key)
		}
		return true
	}
}
