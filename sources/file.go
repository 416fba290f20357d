package sources

import (
	"context"
	goerrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type FileType string

const (
	FileTypeYAML FileType = "yaml"
	FileTypeTOML FileType = "toml"
	FileTypeJSON FileType = "json"
)

func (f FileType) String() string {
	return string(f)
}

func (f FileType) Valid() error {
	switch f {
	case FileTypeJSON, FileTypeYAML, FileTypeTOML:
		return nil
	default:
		return errors.New("invalid options file type", errors.CategoryValidation).
			WithTextCode("INVALID_FILE_TYPE").
			WithMetadata(map[string]any{
				"file_type": string(f),
				"valid_types": []string{
					string(FileTypeJSON),
					string(FileTypeYAML),
					string(FileTypeTOML),
				},
			})
	}
}

func (f FileType) Parser() koanf.Parser {
	switch f {
	case FileTypeJSON:
		return json.Parser()
	case FileTypeTOML:
		return toml.Parser()
	case FileTypeYAML:
		return yaml.Parser()
	default:
		panic(fmt.Errorf("invalid options file type: %s", f))
	}
}

func inferFileType(path string, fallback ...FileType) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FileTypeTOML
	case ".json":
		return FileTypeJSON
	case ".yaml", ".yml":
		return FileTypeYAML
	}

	if len(fallback) > 0 {
		return fallback[0]
	}
	return FileTypeJSON
}

// File layers option values from a local file; the parser is inferred from
// the extension (json, yaml, toml), defaulting to JSON.
func File(path string, order ...int) Source {
	filetype := inferFileType(path)

	return &loader{
		sourceType: SourceTypeFile,
		order:      getOrder(PriorityFile, order...),
		load: func(ctx context.Context, k *koanf.Koanf) error {
			if err := filetype.Valid(); err != nil {
				return err
			}
			if err := k.Load(file.Provider(path), filetype.Parser()); err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to load option values from file").
					WithTextCode("FILE_LOAD_FAILED").
					WithMetadata(map[string]any{
						"filepath":  path,
						"file_type": string(filetype),
					})
			}
			return nil
		},
	}
}

type ErrorFilter func(err error) bool

func DefaultErrorFilter(allowedErrors ...error) ErrorFilter {
	return func(err error) bool {
		if err == nil {
			return false
		}

		if len(allowedErrors) == 0 {
			// ignore absent files but surface parse errors
			return os.IsNotExist(err) || goerrors.Is(err, syscall.ENOENT)
		}

		for _, allowed := range allowedErrors {
			if goerrors.Is(err, allowed) {
				return true
			}
		}
		return false
	}
}

// Optional wraps a source so that errors matched by the filter (missing
// files by default) are ignored instead of failing the load.
func Optional(src Source, errIgnoreFuncs ...ErrorFilter) Source {
	errIgnore := DefaultErrorFilter()
	if len(errIgnoreFuncs) > 0 {
		errIgnore = errIgnoreFuncs[0]
	}

	return &loader{
		sourceType: src.Type(),
		order:      src.Priority(),
		load: func(ctx context.Context, k *koanf.Koanf) error {
			if err := src.Load(ctx, k); !errIgnore(err) {
				return err
			}
			return nil
		},
	}
}
