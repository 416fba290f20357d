package sources

import (
	"context"
	gojson "encoding/json"
	"os"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/tidwall/sjson"
)

// jsonDoc accumulates flat "a.b.c" paths into a nested document. Numeric
// path segments become array indexes, so APP_SORT__0=name style variables
// produce real sequences.
type jsonDoc struct {
	out string
}

func newJSONDoc() *jsonDoc {
	return &jsonDoc{out: "{}"}
}

func (d *jsonDoc) set(path string, value any) error {
	out, err := sjson.Set(d.out, path, value)
	if err != nil {
		return err
	}
	d.out = out
	return nil
}

func (d *jsonDoc) read() (map[string]any, error) {
	var result map[string]any
	if err := gojson.Unmarshal([]byte(d.out), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Env layers option values from environment variables. Variables carrying
// prefix are lowercased, stripped, and split on delim into nested keys:
// APP_PAGE__SIZE=25 with prefix "APP_" and delim "__" becomes page.size.
func Env(prefix, delim string, order ...int) Source {
	return &loader{
		sourceType: SourceTypeEnv,
		order:      getOrder(PriorityEnv, order...),
		load: func(ctx context.Context, k *koanf.Koanf) error {
			doc := newJSONDoc()

			for _, entry := range os.Environ() {
				if prefix != "" && !strings.HasPrefix(entry, prefix) {
					continue
				}
				parts := strings.SplitN(entry, "=", 2)
				key := strings.Replace(strings.ToLower(
					strings.TrimPrefix(parts[0], prefix)), delim, ".", -1)
				if key == "" {
					continue
				}
				if err := doc.set(key, parts[1]); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to build option document from environment").
						WithTextCode("ENV_LOAD_FAILED").
						WithMetadata(map[string]any{
							"prefix":    prefix,
							"delimiter": delim,
							"variable":  parts[0],
						})
				}
			}

			values, err := doc.read()
			if err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to parse option document from environment").
					WithTextCode("ENV_LOAD_FAILED").
					WithMetadata(map[string]any{
						"prefix": prefix,
					})
			}

			if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to load environment option values").
					WithTextCode("ENV_LOAD_FAILED")
			}
			return nil
		},
	}
}

// KV layers option values from "path.to.key=value" pairs, the shape wrapper
// authors accept on command lines or test fixtures.
func KV(pairs []string, order ...int) Source {
	return &loader{
		sourceType: SourceTypeKV,
		order:      getOrder(PriorityKV, order...),
		load: func(ctx context.Context, k *koanf.Koanf) error {
			doc := newJSONDoc()

			for i, pair := range pairs {
				parts := strings.SplitN(pair, "=", 2)
				if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
					return errors.New("invalid key=value pair", errors.CategoryBadInput).
						WithTextCode("INVALID_KV_PAIR").
						WithMetadata(map[string]any{
							"pair":  pair,
							"index": i,
						})
				}
				if err := doc.set(strings.TrimSpace(parts[0]), parts[1]); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to build option document from pairs").
						WithTextCode("KV_LOAD_FAILED").
						WithMetadata(map[string]any{
							"pair": pair,
						})
				}
			}

			values, err := doc.read()
			if err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to parse option document from pairs").
					WithTextCode("KV_LOAD_FAILED")
			}

			if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to load key=value option values").
					WithTextCode("KV_LOAD_FAILED")
			}
			return nil
		},
	}
}
