package responsecode

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeValidation marks missing caller input.
	TextCodeValidation = "RESPONSE_CODE_VALIDATION"
	// TextCodeFormat marks a code that could not be parsed.
	TextCodeFormat = "RESPONSE_CODE_FORMAT"
)

// ErrValidation is the sentinel for empty inputs, match with errors.Is.
var ErrValidation = goerrors.New("response code input is required", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrFormat is the sentinel for malformed codes, match with errors.Is.
var ErrFormat = goerrors.New("response code is malformed", goerrors.CategoryBadInput).
	WithTextCode(TextCodeFormat).
	WithCode(goerrors.CodeBadRequest)

type codecError struct {
	sentinel error
	rich     *goerrors.Error
}

func (e *codecError) Error() string { return e.rich.Error() }

func (e *codecError) Unwrap() []error { return []error{e.sentinel, e.rich} }

func newValidationError(field, message string) error {
	rich := goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"field": field})
	return &codecError{sentinel: ErrValidation, rich: rich}
}

func newFormatError(message string, decodedLength int) error {
	rich := goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(TextCodeFormat).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"decoded_length": decodedLength})
	return &codecError{sentinel: ErrFormat, rich: rich}
}

func wrapFormatError(err error, message string) error {
	rich := goerrors.Wrap(err, goerrors.CategoryBadInput, message).
		WithTextCode(TextCodeFormat).
		WithCode(goerrors.CodeBadRequest)
	return &codecError{sentinel: ErrFormat, rich: rich}
}

// IsValidationError reports whether err came from empty codec input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsFormatError reports whether err came from a malformed code.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}
