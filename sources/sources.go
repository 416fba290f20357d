package sources

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

type SourceType string

const (
	SourceTypeDefaults SourceType = "defaults"
	SourceTypeStruct   SourceType = "struct"
	SourceTypeFile     SourceType = "file"
	SourceTypeEnv      SourceType = "env"
	SourceTypeKV       SourceType = "kv"
	SourceTypeFlags    SourceType = "pflag"
)

func (s SourceType) String() string {
	return string(s)
}

func (s SourceType) validate() error {
	switch s {
	case SourceTypeDefaults, SourceTypeStruct, SourceTypeFile, SourceTypeEnv, SourceTypeKV, SourceTypeFlags:
		return nil
	default:
		return errors.New("invalid source type", errors.CategoryValidation).
			WithTextCode("INVALID_SOURCE_TYPE").
			WithMetadata(map[string]any{
				"source_type": string(s),
				"valid_types": []string{
					string(SourceTypeDefaults),
					string(SourceTypeStruct),
					string(SourceTypeFile),
					string(SourceTypeEnv),
					string(SourceTypeKV),
					string(SourceTypeFlags),
				},
			})
	}
}

type Priority int

// group.WithSource(sources.File("opts.json", int(sources.PriorityFile.WithOffset(-10))))
func (p Priority) WithOffset(offset int) Priority {
	return Priority(int(p) + offset)
}

var (
	PriorityDefaults Priority = 0
	PriorityStruct   Priority = 10
	PriorityFile     Priority = 20
	PriorityEnv      Priority = 30
	PriorityKV       Priority = 40
	PriorityFlags    Priority = 50
)

// Source loads one layer of option values into the shared koanf set.
type Source interface {
	Type() SourceType
	Priority() int
	Validate() error
	Load(context.Context, *koanf.Koanf) error
}

type loader struct {
	order      int
	sourceType SourceType
	err        error
	load       func(context.Context, *koanf.Koanf) error
}

func (l *loader) Priority() int {
	return l.order
}

func (l *loader) Type() SourceType {
	return l.sourceType
}

func (l *loader) Validate() error {
	if l.err != nil {
		return l.err
	}
	return l.sourceType.validate()
}

func (l *loader) Load(ctx context.Context, k *koanf.Koanf) error {
	return l.load(ctx, k)
}

// Defaults layers a literal map of option values.
func Defaults(values map[string]any, order ...int) Source {
	return &loader{
		sourceType: SourceTypeDefaults,
		order:      getOrder(PriorityDefaults, order...),
		load: func(ctx context.Context, k *koanf.Koanf) error {
			if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to load default option values").
					WithTextCode("DEFAULTS_LOAD_FAILED").
					WithMetadata(map[string]any{
						"values_count": len(values),
					})
			}
			return nil
		},
	}
}

// Struct layers option values from a tagged struct. An empty tag falls back
// to the "opt" tag optx binds with.
func Struct(v any, tag string, order ...int) Source {
	if v == nil {
		return &loader{
			sourceType: SourceTypeStruct,
			err: errors.New("struct cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_STRUCT"),
			load: func(context.Context, *koanf.Koanf) error { return nil },
		}
	}
	if tag == "" {
		tag = "opt"
	}

	return &loader{
		sourceType: SourceTypeStruct,
		order:      getOrder(PriorityStruct, order...),
		load: func(ctx context.Context, k *koanf.Koanf) error {
			if err := k.Load(structs.Provider(v, tag), nil); err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to load option values from struct").
					WithTextCode("STRUCT_LOAD_FAILED").
					WithMetadata(map[string]any{
						"tag": tag,
					})
			}
			return nil
		},
	}
}

// Flags layers option values from a parsed pflag set.
func Flags(flagset *pflag.FlagSet, order ...int) Source {
	if flagset == nil {
		return &loader{
			sourceType: SourceTypeFlags,
			err: errors.New("flagset cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_FLAGSET"),
			load: func(context.Context, *koanf.Koanf) error { return nil },
		}
	}

	return &loader{
		sourceType: SourceTypeFlags,
		order:      getOrder(PriorityFlags, order...),
		load: func(ctx context.Context, k *koanf.Koanf) error {
			if err := k.Load(posflag.Provider(flagset, ".", k), nil); err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to load option values from posix flags").
					WithTextCode("FLAGS_LOAD_FAILED")
			}
			return nil
		},
	}
}

func getOrder(defaultOrder Priority, orders ...int) int {
	if len(orders) > 0 {
		return orders[0]
	}
	return int(defaultOrder)
}
