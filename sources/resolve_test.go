package sources

import (
	"context"
	"testing"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
)

func loadSet(t *testing.T, values map[string]any) *koanf.Koanf {
	t.Helper()
	k := koanf.New(".")
	assert.NoError(t, k.Load(confmap.Provider(values, "."), nil))
	return k
}

func TestVariablesFullReferenceKeepsType(t *testing.T) {
	k := loadSet(t, map[string]any{
		"limit":      25,
		"page.size":  "${limit}",
		"page.label": "show ${limit} rows",
	})

	Variables("${", "}").Resolve(k)

	assert.Equal(t, 25, k.Get("page.size"))
	assert.Equal(t, "show 25 rows", k.Get("page.label"))
}

func TestVariablesUnknownPathLeftAlone(t *testing.T) {
	k := loadSet(t, map[string]any{"page.size": "${missing}"})

	Variables("${", "}").Resolve(k)

	assert.Equal(t, "${missing}", k.Get("page.size"))
}

func TestVariablesSelfReferenceIgnored(t *testing.T) {
	k := loadSet(t, map[string]any{"loop": "${loop}"})

	Variables("${", "}").Resolve(k)

	assert.Equal(t, "${loop}", k.Get("loop"))
}

func TestExpressionEvaluates(t *testing.T) {
	k := loadSet(t, map[string]any{"limit": "{{ 5 * 5 }}"})

	Expression("{{", "}}").Resolve(k)

	assert.EqualValues(t, 25, k.Get("limit"))
}

func TestExpressionErrorLeavesValue(t *testing.T) {
	k := loadSet(t, map[string]any{"limit": "{{ 5 * }}"})

	Expression("{{", "}}").Resolve(k)

	assert.Equal(t, "{{ 5 * }}", k.Get("limit"))
}

func TestExpressionErrorRemove(t *testing.T) {
	k := loadSet(t, map[string]any{"limit": "{{ 5 * }}"})

	ExpressionWithEvaluator("{{", "}}", nil, OnEvalRemove()).Resolve(k)

	assert.False(t, k.Exists("limit"))
}

func TestExpressionIgnoresPartialMatches(t *testing.T) {
	k := loadSet(t, map[string]any{"label": "rows: {{ 1 + 1 }} shown"})

	Expression("{{", "}}").Resolve(k)

	assert.Equal(t, "rows: {{ 1 + 1 }} shown", k.Get("label"))
}

func TestGroupResolverPasses(t *testing.T) {
	group := New(Defaults(map[string]any{
		"base":   "v1",
		"path":   "${base}/opts",
		"target": "${path}.json",
	})).
		WithResolver(Variables("${", "}")).
		WithPasses(3)

	opts, err := group.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "v1/opts.json", opts["target"])
}

func TestGroupSinglePassStopsEarly(t *testing.T) {
	group := New(Defaults(map[string]any{
		"base": "v1",
		"path": "${base}/opts",
	})).WithResolver(Variables("${", "}"))

	opts, err := group.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "v1/opts", opts["path"])
}
