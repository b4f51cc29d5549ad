package auth

import "github.com/google/uuid"

// Tone sets the banner style of a rendered outcome.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneInfo    Tone = "info"
	ToneError   Tone = "error"
)

// ResendTarget names the form a "request a new one" link points at.
type ResendTarget string

const (
	ResendConfirmation  ResendTarget = "confirmation"
	ResendPasswordReset ResendTarget = "password_reset"
)

// Views rendered by AccountController.
const (
	ViewConfirmationResult = "account/confirmation"
	ViewConfirmationError  = "account/confirmation_error"
	ViewAccountNotFound    = "account/not_found"
	ViewResendConfirmation = "account/confirmation_resend"
	ViewPasswordResetStart = "account/password_reset"
	ViewPasswordResetForm  = "account/password_reset_form"
	ViewPasswordChanged    = "account/password_changed"
)

// User facing messages. They never carry error details.
const (
	MessageLinkInvalid          = "This link is invalid or has expired. You can request a new confirmation email."
	MessageAccountNotFound      = "We could not find an account for this link. You can request a new confirmation email."
	MessageAlreadyConfirmed     = "Your email address is already confirmed."
	MessageEmailConfirmed       = "Thank you! Your email address has been confirmed."
	MessageConfirmationRejected = "We could not confirm your email with this link. You can request a new confirmation email."
	MessageCheckInbox           = "If an account matches that address, we have sent an email with further instructions. Please check your inbox."
	MessageInvalidEmail         = "Please enter a valid email address."
	MessageTryLater             = "We could not send the email right now. Please try again later."
	MessageResetLinkInvalid     = "This password reset link is invalid or has expired. You can request a new one."
	MessageResetAccountNotFound = "We could not find an account for this link. You can request a new password reset."
	MessageInvalidPassword      = "Please choose a valid password."
	MessagePasswordChanged      = "Your password has been changed. You can now sign in."
	MessageResetRejected        = "We could not reset your password with this link. You can request a new one."
)

// Presentation is what the HTTP boundary renders for a terminal outcome.
type Presentation struct {
	View        string            `json:"view"`
	Tone        Tone              `json:"tone"`
	Message     string            `json:"message"`
	OfferResend bool              `json:"offer_resend"`
	Resend      ResendTarget      `json:"resend,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// Success reports whether the outcome belongs to the success class.
func (p Presentation) Success() bool {
	return p.Tone != ToneError
}

// ConfirmationOutcome is the closed set of ConfirmEmail results.
type ConfirmationOutcome interface {
	Name() string
	Presentation() Presentation
	confirmationOutcome()
}

// LinkInvalid is returned for missing, malformed or unusable codes.
type LinkInvalid struct{}

// AccountNotFound is returned when the code names an unknown account.
type AccountNotFound struct {
	UserID uuid.UUID
}

// AlreadyConfirmed is returned when the account was confirmed earlier.
type AlreadyConfirmed struct {
	UserID uuid.UUID
}

// EmailConfirmed is returned when this call confirmed the account.
type EmailConfirmed struct {
	UserID uuid.UUID
}

// ConfirmationRejected is returned when the store declined the token.
type ConfirmationRejected struct {
	UserID  uuid.UUID
	Reasons []string
}

func (LinkInvalid) confirmationOutcome()          {}
func (AccountNotFound) confirmationOutcome()      {}
func (AlreadyConfirmed) confirmationOutcome()     {}
func (EmailConfirmed) confirmationOutcome()       {}
func (ConfirmationRejected) confirmationOutcome() {}

func (LinkInvalid) Name() string          { return "invalid_link" }
func (AccountNotFound) Name() string      { return "user_not_found" }
func (AlreadyConfirmed) Name() string     { return "already_confirmed" }
func (EmailConfirmed) Name() string       { return "confirmed" }
func (ConfirmationRejected) Name() string { return "confirmation_rejected" }

func (LinkInvalid) Presentation() Presentation {
	return Presentation{View: ViewConfirmationError, Tone: ToneError, Message: MessageLinkInvalid, OfferResend: true, Resend: ResendConfirmation}
}

func (AccountNotFound) Presentation() Presentation {
	return Presentation{View: ViewAccountNotFound, Tone: ToneError, Message: MessageAccountNotFound, OfferResend: true, Resend: ResendConfirmation}
}

func (AlreadyConfirmed) Presentation() Presentation {
	return Presentation{View: ViewConfirmationResult, Tone: ToneInfo, Message: MessageAlreadyConfirmed}
}

func (EmailConfirmed) Presentation() Presentation {
	return Presentation{View: ViewConfirmationResult, Tone: ToneSuccess, Message: MessageEmailConfirmed}
}

func (ConfirmationRejected) Presentation() Presentation {
	return Presentation{View: ViewConfirmationError, Tone: ToneError, Message: MessageConfirmationRejected, OfferResend: true, Resend: ResendConfirmation}
}

// ResendOutcome is the closed set of ResendConfirmation results. Every
// variant renders the resend form.
type ResendOutcome interface {
	Name() string
	Presentation() Presentation
	resendOutcome()
}

// ResendInvalid carries field level validation messages.
type ResendInvalid struct {
	Fields map[string]string
}

// ResendAcknowledged is returned when no account matches. It renders exactly
// like ResendDispatched.
type ResendAcknowledged struct{}

// ResendAlreadyConfirmed is returned when the account needs no confirmation.
type ResendAlreadyConfirmed struct{}

// ResendDispatched is returned once the confirmation link was sent.
type ResendDispatched struct{}

// ResendFailed is returned when a token, link or delivery step failed.
type ResendFailed struct{}

func (ResendInvalid) resendOutcome()          {}
func (ResendAcknowledged) resendOutcome()     {}
func (ResendAlreadyConfirmed) resendOutcome() {}
func (ResendDispatched) resendOutcome()       {}
func (ResendFailed) resendOutcome()           {}

func (ResendInvalid) Name() string          { return "validation_failed" }
func (ResendAcknowledged) Name() string     { return "generic_acknowledged" }
func (ResendAlreadyConfirmed) Name() string { return "already_confirmed" }
func (ResendDispatched) Name() string       { return "email_dispatched" }
func (ResendFailed) Name() string           { return "dispatch_failed" }

func (o ResendInvalid) Presentation() Presentation {
	return Presentation{View: ViewResendConfirmation, Tone: ToneError, Message: MessageInvalidEmail, Fields: o.Fields}
}

func (ResendAcknowledged) Presentation() Presentation {
	return checkInbox(ViewResendConfirmation)
}

func (ResendAlreadyConfirmed) Presentation() Presentation {
	return Presentation{View: ViewResendConfirmation, Tone: ToneInfo, Message: MessageAlreadyConfirmed}
}

func (ResendDispatched) Presentation() Presentation {
	return checkInbox(ViewResendConfirmation)
}

func (ResendFailed) Presentation() Presentation {
	return Presentation{View: ViewResendConfirmation, Tone: ToneError, Message: MessageTryLater}
}

// PasswordResetRequestOutcome is the closed set of RequestPasswordReset results.
type PasswordResetRequestOutcome interface {
	Name() string
	Presentation() Presentation
	passwordResetRequestOutcome()
}

// ResetRequestInvalid carries field level validation messages.
type ResetRequestInvalid struct {
	Fields map[string]string
}

// ResetRequestAcknowledged is returned when no account matches.
type ResetRequestAcknowledged struct{}

// ResetRequestDispatched is returned once the reset link or code was sent.
type ResetRequestDispatched struct{}

// ResetRequestFailed is returned when a token, link or delivery step failed.
type ResetRequestFailed struct{}

func (ResetRequestInvalid) passwordResetRequestOutcome()      {}
func (ResetRequestAcknowledged) passwordResetRequestOutcome() {}
func (ResetRequestDispatched) passwordResetRequestOutcome()   {}
func (ResetRequestFailed) passwordResetRequestOutcome()       {}

func (ResetRequestInvalid) Name() string      { return "validation_failed" }
func (ResetRequestAcknowledged) Name() string { return "generic_acknowledged" }
func (ResetRequestDispatched) Name() string   { return "email_dispatched" }
func (ResetRequestFailed) Name() string       { return "dispatch_failed" }

func (o ResetRequestInvalid) Presentation() Presentation {
	return Presentation{View: ViewPasswordResetStart, Tone: ToneError, Message: MessageInvalidEmail, Fields: o.Fields}
}

func (ResetRequestAcknowledged) Presentation() Presentation {
	return checkInbox(ViewPasswordResetStart)
}

func (ResetRequestDispatched) Presentation() Presentation {
	return checkInbox(ViewPasswordResetStart)
}

func (ResetRequestFailed) Presentation() Presentation {
	return Presentation{View: ViewPasswordResetStart, Tone: ToneError, Message: MessageTryLater}
}

// PasswordResetOutcome is the closed set of ResetPassword results.
type PasswordResetOutcome interface {
	Name() string
	Presentation() Presentation
	passwordResetOutcome()
}

// ResetLinkInvalid is returned for missing, malformed or unusable codes.
type ResetLinkInvalid struct{}

// ResetAccountNotFound is returned when the code names an unknown account.
type ResetAccountNotFound struct {
	UserID uuid.UUID
}

// ResetPasswordInvalid carries password policy violations.
type ResetPasswordInvalid struct {
	Fields map[string]string
}

// PasswordChanged is returned once the new password is stored.
type PasswordChanged struct {
	UserID uuid.UUID
}

// ResetRejected is returned when the store declined the token.
type ResetRejected struct {
	UserID  uuid.UUID
	Reasons []string
}

func (ResetLinkInvalid) passwordResetOutcome()     {}
func (ResetAccountNotFound) passwordResetOutcome() {}
func (ResetPasswordInvalid) passwordResetOutcome() {}
func (PasswordChanged) passwordResetOutcome()      {}
func (ResetRejected) passwordResetOutcome()        {}

func (ResetLinkInvalid) Name() string     { return "invalid_link" }
func (ResetAccountNotFound) Name() string { return "user_not_found" }
func (ResetPasswordInvalid) Name() string { return "validation_failed" }
func (PasswordChanged) Name() string      { return "password_changed" }
func (ResetRejected) Name() string        { return "reset_rejected" }

func (ResetLinkInvalid) Presentation() Presentation {
	return Presentation{View: ViewPasswordResetStart, Tone: ToneError, Message: MessageResetLinkInvalid, OfferResend: true, Resend: ResendPasswordReset}
}

func (ResetAccountNotFound) Presentation() Presentation {
	return Presentation{View: ViewPasswordResetStart, Tone: ToneError, Message: MessageResetAccountNotFound, OfferResend: true, Resend: ResendPasswordReset}
}

func (o ResetPasswordInvalid) Presentation() Presentation {
	return Presentation{View: ViewPasswordResetForm, Tone: ToneError, Message: MessageInvalidPassword, Fields: o.Fields}
}

func (PasswordChanged) Presentation() Presentation {
	return Presentation{View: ViewPasswordChanged, Tone: ToneSuccess, Message: MessagePasswordChanged}
}

func (ResetRejected) Presentation() Presentation {
	return Presentation{View: ViewPasswordResetStart, Tone: ToneError, Message: MessageResetRejected, OfferResend: true, Resend: ResendPasswordReset}
}

func checkInbox(view string) Presentation {
	return Presentation{View: view, Tone: ToneSuccess, Message: MessageCheckInbox}
}
