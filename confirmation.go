package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-auth-confirm/responsecode"
)

// ConfirmationWorkflow confirms account emails and re-sends confirmation
// links. Every call ends in exactly one terminal outcome.
type ConfirmationWorkflow struct {
	workflow
}

// NewConfirmationWorkflow wires the workflow collaborators. None may be nil.
func NewConfirmationWorkflow(store IdentityStore, notifier Notifier, links LinkBuilder, opts ...WorkflowOption) *ConfirmationWorkflow {
	return &ConfirmationWorkflow{
		workflow: newWorkflow(store, notifier, links, opts...),
	}
}

// ConfirmEmail consumes a confirmation response code.
func (w *ConfirmationWorkflow) ConfirmEmail(ctx context.Context, code string) (outcome ConfirmationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("email confirmation panicked", "panic", r, "code_length", len(code))
			outcome = LinkInvalid{}
		}
		w.outcomes.RecordOutcome(WorkflowConfirmEmail, outcome.Name())
	}()

	return w.confirmEmail(ctx, code)
}

func (w *ConfirmationWorkflow) confirmEmail(ctx context.Context, code string) ConfirmationOutcome {
	logger := w.logger.WithContext(ctx)

	if strings.TrimSpace(code) == "" {
		logger.Debug("email confirmation without code")
		return LinkInvalid{}
	}

	ctx, cancel := context.WithTimeout(ctx, w.config.GetOperationTimeout())
	defer cancel()

	userID, token, err := responsecode.Decode(code)
	if err != nil {
		logger.Error("failed to decode confirmation code", "code_length", len(code), "error", err)
		return LinkInvalid{}
	}

	if err := ctx.Err(); err != nil {
		logger.Error("email confirmation cancelled", "user_id", userID, "error", err)
		return LinkInvalid{}
	}

	user, err := w.store.FindByID(ctx, userID)
	if err != nil {
		logger.Error("failed to look up account for confirmation", "user_id", userID, "error", err)
		return LinkInvalid{}
	}

	if user == nil {
		logger.Info("email confirmation for unknown account", "user_id", userID)
		return AccountNotFound{UserID: userID}
	}

	if user.EmailConfirmed() {
		logger.Debug("email already confirmed", "user_id", userID)
		return AlreadyConfirmed{UserID: userID}
	}

	if err := ctx.Err(); err != nil {
		logger.Error("email confirmation cancelled", "user_id", userID, "error", err)
		return LinkInvalid{}
	}

	result, err := w.store.ConfirmToken(ctx, user, token)
	if IsRejectedError(err) {
		result, err = TokenRejected(RejectionReasons(err)...), nil
	}
	if err != nil {
		logger.Error("failed to confirm email", "user_id", userID, "error", err)
		return LinkInvalid{}
	}

	if !result.Succeeded {
		logger.Warn("email confirmation rejected", "user_id", userID, "error", NewRejectedError(result.Reasons...))
		return ConfirmationRejected{UserID: userID, Reasons: result.Reasons}
	}

	logger.Info("email confirmed", "user_id", userID)
	return EmailConfirmed{UserID: userID}
}

// ResendConfirmation issues a fresh confirmation link for an unconfirmed
// account. Unknown addresses are acknowledged like dispatched ones.
func (w *ConfirmationWorkflow) ResendConfirmation(ctx context.Context, email string) (outcome ResendOutcome) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("resend confirmation panicked", "panic", r)
			outcome = ResendFailed{}
		}
		w.outcomes.RecordOutcome(WorkflowResendConfirmation, outcome.Name())
	}()

	return w.resendConfirmation(ctx, email)
}

func (w *ConfirmationWorkflow) resendConfirmation(ctx context.Context, email string) ResendOutcome {
	logger := w.logger.WithContext(ctx)

	req := EmailRequest{Email: strings.TrimSpace(email), verifier: w.verifier}
	if err := req.Validate(); err != nil {
		logger.Debug("resend confirmation validation failed", "error", err)
		return ResendInvalid{Fields: fieldErrors(err)}
	}

	ctx, cancel := context.WithTimeout(ctx, w.config.GetOperationTimeout())
	defer cancel()

	if err := ctx.Err(); err != nil {
		logger.Error("resend confirmation cancelled", "error", err)
		return ResendFailed{}
	}

	user, err := w.store.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.Error("failed to look up account for resend", "error", err)
		return ResendFailed{}
	}

	if user == nil {
		logger.Debug("resend confirmation for unknown address")
		return ResendAcknowledged{}
	}

	if user.EmailConfirmed() {
		logger.Debug("resend confirmation for confirmed account", "user_id", user.ID)
		return ResendAlreadyConfirmed{}
	}

	link, err := w.confirmationLink(ctx, user)
	if err != nil {
		logger.Error("failed to prepare confirmation link", "user_id", user.ID, "error", err)
		return ResendFailed{}
	}

	if err := w.notifier.SendConfirmationLink(ctx, req.Email, link); err != nil {
		logger.Error("failed to send confirmation link", "user_id", user.ID, "error", err)
		return ResendFailed{}
	}

	w.record(ctx, ActivityEventConfirmationSent, user, nil)
	logger.Info("confirmation link sent", "user_id", user.ID)
	return ResendDispatched{}
}

func (w *ConfirmationWorkflow) confirmationLink(ctx context.Context, user *User) (string, error) {
	token, err := w.store.GenerateConfirmationToken(ctx, user)
	if err != nil {
		return "", err
	}

	code, err := responsecode.Encode(user.ID, token)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return buildLink(w.links, ConfirmEmailRoute, code)
}

func buildLink(links LinkBuilder, route RouteKey, code string) (string, error) {
	link, err := links.BuildLink(route.Area, route.Controller, route.Action, map[string]string{
		"code": code,
	})
	if err != nil {
		return "", NewDispatchError(err, "failed to build account link")
	}
	if strings.TrimSpace(link) == "" {
		return "", ErrLinkUnavailable
	}
	return link, nil
}
