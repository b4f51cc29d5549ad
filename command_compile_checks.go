package auth

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ConfirmEmailMessage]            = (*ConfirmEmailHandler)(nil)
	_ gocmd.Commander[ResendConfirmationMessage]      = (*ResendConfirmationHandler)(nil)
	_ gocmd.Commander[InitializePasswordResetMessage] = (*InitializePasswordResetHandler)(nil)
	_ gocmd.Commander[FinalizePasswordResetMessage]   = (*FinalizePasswordResetHandler)(nil)
)
