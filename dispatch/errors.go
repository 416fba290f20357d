package dispatch

import (
	goerrors "errors"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeMissingRequiredOption marks errors raised when WithRequired is
	// set and the merged option value resolves to absent.
	TextCodeMissingRequiredOption = "MISSING_REQUIRED_OPTION"
	// TextCodeUnmappedOptionValue marks errors raised when a table dispatch
	// resolves a symbol with no handler registered for it.
	TextCodeUnmappedOptionValue = "UNMAPPED_OPTION_VALUE"
	// TextCodeInvalidArity marks errors raised when a handler declares a
	// parameter count other than one or two.
	TextCodeInvalidArity = "INVALID_ARITY"
	// TextCodeInvalidOptionValue marks errors raised when a table dispatch
	// option value is neither a symbol nor a sequence of symbols.
	TextCodeInvalidOptionValue = "INVALID_OPTION_VALUE"
	// TextCodeInvalidHandler marks errors raised when a handler is not a
	// function, or its signature cannot accept the token or options.
	TextCodeInvalidHandler = "INVALID_HANDLER"
)

func IsMissingRequiredOption(err error) bool {
	return hasTextCode(err, TextCodeMissingRequiredOption)
}

func IsUnmappedOptionValue(err error) bool {
	return hasTextCode(err, TextCodeUnmappedOptionValue)
}

func IsInvalidArity(err error) bool {
	return hasTextCode(err, TextCodeInvalidArity)
}

func hasTextCode(err error, code string) bool {
	var e *errors.Error
	if goerrors.As(err, &e) {
		return e.TextCode == code
	}
	return false
}
