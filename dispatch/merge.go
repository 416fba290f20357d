package dispatch

import (
	"github.com/goliatone/go-errors"
	"github.com/mitchellh/copystructure"
)

// mergeOptions layers defaults beneath options. Every key from either side
// appears in the result; options entries always win, nil values included, so
// an explicit nil clears a default for that key.
func mergeOptions(defaults, options Options) Options {
	merged := make(Options, len(defaults)+len(options))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range options {
		merged[k] = v
	}
	return merged
}

// snapshotOptions deep-clones the merged set before handlers see it, so a
// handler mutating its options argument never touches the caller's maps.
func snapshotOptions(merged Options) (Options, error) {
	if len(merged) == 0 {
		return Options{}, nil
	}
	cloned, err := copystructure.Copy(map[string]any(merged))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to clone merged options").
			WithTextCode("OPTIONS_CLONE_FAILED").
			WithMetadata(map[string]any{
				"option_count": len(merged),
			})
	}
	snapshot, ok := cloned.(map[string]any)
	if !ok {
		return nil, errors.New("cloned options have unexpected shape", errors.CategoryOperation).
			WithTextCode("OPTIONS_CLONE_FAILED")
	}
	return Options(snapshot), nil
}
