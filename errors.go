package auth

import (
	"errors"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeUserNotFound    = "USER_NOT_FOUND"
	TextCodeTokenRejected   = "TOKEN_REJECTED"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeLinkUnavailable = "LINK_UNAVAILABLE"
	TextCodeDispatchFailed  = "NOTIFICATION_DISPATCH_FAILED"
)

// ErrUserNotFound is returned when a referenced account does not exist
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTokenRejected is returned when the identity store declines a token
var ErrTokenRejected = goerrors.New("token rejected by identity store", goerrors.CategoryConflict).
	WithTextCode(TextCodeTokenRejected).
	WithCode(goerrors.CodeConflict)

// ErrLinkUnavailable is returned when no absolute link could be built
var ErrLinkUnavailable = goerrors.New("unable to build account link", goerrors.CategoryExternal).
	WithTextCode(TextCodeLinkUnavailable)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password can not be an empty string")

// ErrPasswordResetDisabled is returned when the password reset feature is off
var ErrPasswordResetDisabled = goerrors.New("password reset is disabled", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden)

// ErrConfirmationResendDisabled is returned when resending confirmations is off
var ErrConfirmationResendDisabled = goerrors.New("confirmation resend is disabled", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden)

// NewRejectedError carries the store's rejection reasons in metadata.
// Expired tokens get TextCodeTokenExpired.
func NewRejectedError(reasons ...string) *goerrors.Error {
	textCode := TextCodeTokenRejected
	if slices.Contains(reasons, ReasonTokenExpired) {
		textCode = TextCodeTokenExpired
	}
	return goerrors.New("token rejected: "+strings.Join(reasons, "; "), goerrors.CategoryConflict).
		WithTextCode(textCode).
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"reasons": reasons})
}

// RejectionReasons returns the reasons attached by NewRejectedError.
func RejectionReasons(err error) []string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Metadata == nil {
		return nil
	}
	reasons, _ := richErr.Metadata["reasons"].([]string)
	return reasons
}

// NewDispatchError wraps a notification or link building failure.
func NewDispatchError(err error, message string) *goerrors.Error {
	if err == nil {
		return goerrors.New(message, goerrors.CategoryExternal).
			WithTextCode(TextCodeDispatchFailed)
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithTextCode(TextCodeDispatchFailed)
}

// IsNotFoundError will check for missing records
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserNotFound) {
		return true
	}
	return hasCategory(err, goerrors.CategoryNotFound)
}

// IsRejectedError will check for store rejections
func IsRejectedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenRejected) {
		return true
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeTokenRejected || richErr.TextCode == TextCodeTokenExpired
}

// IsDispatchError will check for notification and link failures
func IsDispatchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLinkUnavailable) {
		return true
	}
	return hasCategory(err, goerrors.CategoryExternal)
}

func hasCategory(err error, category goerrors.Category) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == category
	}
	return false
}
