package sources

import (
	"context"
	"reflect"
	"sort"

	"github.com/goliatone/go-dispatch/dispatch"
	"github.com/goliatone/go-dispatch/logger"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/copystructure"
)

var DefaultDelimiter = "."

// Group collects option sources and produces the merged dispatch.Options.
type Group struct {
	sources   []Source
	resolvers []Resolver
	passes    int
	delim     string
	logger    logger.Logger
}

func New(srcs ...Source) *Group {
	return &Group{
		sources: srcs,
		passes:  1,
		delim:   DefaultDelimiter,
		logger:  logger.NewDefaultLogger("sources"),
	}
}

func (g *Group) WithSource(srcs ...Source) *Group {
	for _, src := range srcs {
		if src != nil {
			g.sources = append(g.sources, src)
		}
	}
	return g
}

func (g *Group) WithResolver(resolvers ...Resolver) *Group {
	for _, r := range resolvers {
		if r != nil {
			g.resolvers = append(g.resolvers, r)
		}
	}
	return g
}

// WithPasses sets the maximum number of resolver passes (minimum 1).
func (g *Group) WithPasses(passes int) *Group {
	if passes < 1 {
		passes = 1
	}
	g.passes = passes
	return g
}

func (g *Group) WithDelimiter(delim string) *Group {
	if delim != "" {
		g.delim = delim
	}
	return g
}

func (g *Group) WithLogger(l logger.Logger) *Group {
	if l != nil {
		g.logger = l
	}
	return g
}

// Load validates the sources, loads them in priority order into one koanf
// set, runs resolver passes to convergence, and returns the nested values.
func (g *Group) Load(ctx context.Context) (dispatch.Options, error) {
	k := koanf.NewWithConf(koanf.Conf{Delim: g.delim})

	for i, src := range g.sources {
		if err := src.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid option source").
				WithTextCode("INVALID_SOURCE").
				WithMetadata(map[string]any{
					"source_type":  src.Type().String(),
					"source_index": i,
				})
		}
	}

	sort.SliceStable(g.sources, func(i, j int) bool {
		return g.sources[i].Priority() < g.sources[j].Priority()
	})

	for i, src := range g.sources {
		g.logger.Debug("loading source type=%s priority=%d", src.Type(), src.Priority())
		if err := src.Load(ctx, k); err != nil {
			return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load option values from source").
				WithTextCode("SOURCE_LOAD_FAILED").
				WithMetadata(map[string]any{
					"source_type":   src.Type().String(),
					"source_index":  i,
					"total_sources": len(g.sources),
				})
		}
	}

	if len(g.resolvers) > 0 {
		for pass := 0; pass < g.passes; pass++ {
			before, ok := snapshot(k)
			for _, r := range g.resolvers {
				r.Resolve(k)
			}
			if !ok {
				continue
			}
			if reflect.DeepEqual(before, k.Raw()) {
				break
			}
		}
	}

	return dispatch.Options(k.Raw()), nil
}

func snapshot(k *koanf.Koanf) (any, bool) {
	raw := k.Raw()
	cloned, err := copystructure.Copy(raw)
	if err != nil {
		return raw, false
	}
	return cloned, true
}
