package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-auth-confirm/responsecode"
)

// PasswordResetWorkflow issues password reset codes and applies new
// passwords. It shares the response code format with email confirmation.
type PasswordResetWorkflow struct {
	workflow
}

// NewPasswordResetWorkflow wires the workflow collaborators. None may be nil.
func NewPasswordResetWorkflow(store IdentityStore, notifier Notifier, links LinkBuilder, opts ...WorkflowOption) *PasswordResetWorkflow {
	return &PasswordResetWorkflow{
		workflow: newWorkflow(store, notifier, links, opts...),
	}
}

// RequestPasswordReset sends a reset link, or the raw code when configured
// for code delivery. Unknown addresses are acknowledged like dispatched ones.
func (w *PasswordResetWorkflow) RequestPasswordReset(ctx context.Context, email string) (outcome PasswordResetRequestOutcome) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("password reset request panicked", "panic", r)
			outcome = ResetRequestFailed{}
		}
		w.outcomes.RecordOutcome(WorkflowRequestPasswordReset, outcome.Name())
	}()

	return w.requestPasswordReset(ctx, email)
}

func (w *PasswordResetWorkflow) requestPasswordReset(ctx context.Context, email string) PasswordResetRequestOutcome {
	logger := w.logger.WithContext(ctx)

	req := EmailRequest{Email: strings.TrimSpace(email), verifier: w.verifier}
	if err := req.Validate(); err != nil {
		logger.Debug("password reset request validation failed", "error", err)
		return ResetRequestInvalid{Fields: fieldErrors(err)}
	}

	ctx, cancel := context.WithTimeout(ctx, w.config.GetOperationTimeout())
	defer cancel()

	if err := ctx.Err(); err != nil {
		logger.Error("password reset request cancelled", "error", err)
		return ResetRequestFailed{}
	}

	user, err := w.store.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.Error("failed to look up account for password reset", "error", err)
		return ResetRequestFailed{}
	}

	if user == nil {
		logger.Debug("password reset for unknown address")
		return ResetRequestAcknowledged{}
	}

	token, err := w.store.GeneratePasswordResetToken(ctx, user)
	if err != nil {
		logger.Error("failed to generate password reset token", "user_id", user.ID, "error", err)
		return ResetRequestFailed{}
	}

	code, err := responsecode.Encode(user.ID, token)
	if err != nil {
		logger.Error("failed to encode password reset code", "user_id", user.ID, "error", err)
		return ResetRequestFailed{}
	}

	if err := ctx.Err(); err != nil {
		logger.Error("password reset request cancelled", "user_id", user.ID, "error", err)
		return ResetRequestFailed{}
	}

	recipient := req.Email
	delivery := w.config.GetPasswordResetDelivery()

	switch delivery {
	case DeliverCode:
		err = w.notifier.SendPasswordResetCode(ctx, recipient, code)
	default:
		var link string
		link, err = buildLink(w.links, PasswordResetRoute, code)
		if err != nil {
			logger.Error("failed to build password reset link", "user_id", user.ID, "error", err)
			return ResetRequestFailed{}
		}
		err = w.notifier.SendPasswordResetLink(ctx, recipient, link)
	}

	if err != nil {
		logger.Error("failed to send password reset notification", "user_id", user.ID, "delivery", delivery, "error", err)
		return ResetRequestFailed{}
	}

	w.record(ctx, ActivityEventPasswordResetRequested, user, map[string]any{"delivery": delivery})
	logger.Info("password reset notification sent", "user_id", user.ID, "delivery", delivery)
	return ResetRequestDispatched{}
}

// ResetPassword validates the new password and applies it with the code.
func (w *PasswordResetWorkflow) ResetPassword(ctx context.Context, req PasswordResetRequest) (outcome PasswordResetOutcome) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("password reset panicked", "panic", r, "code_length", len(req.Code))
			outcome = ResetLinkInvalid{}
		}
		w.outcomes.RecordOutcome(WorkflowResetPassword, outcome.Name())
	}()

	return w.resetPassword(ctx, req)
}

func (w *PasswordResetWorkflow) resetPassword(ctx context.Context, req PasswordResetRequest) PasswordResetOutcome {
	logger := w.logger.WithContext(ctx)

	if strings.TrimSpace(req.Code) == "" {
		logger.Debug("password reset without code")
		return ResetLinkInvalid{}
	}

	userID, token, err := responsecode.Decode(req.Code)
	if err != nil {
		logger.Error("failed to decode password reset code", "code_length", len(req.Code), "error", err)
		return ResetLinkInvalid{}
	}

	if err := req.Validate(); err != nil {
		logger.Debug("password reset validation failed", "user_id", userID)
		return ResetPasswordInvalid{Fields: fieldErrors(err)}
	}

	ctx, cancel := context.WithTimeout(ctx, w.config.GetOperationTimeout())
	defer cancel()

	if err := ctx.Err(); err != nil {
		logger.Error("password reset cancelled", "user_id", userID, "error", err)
		return ResetLinkInvalid{}
	}

	user, err := w.store.FindByID(ctx, userID)
	if err != nil {
		logger.Error("failed to look up account for password reset", "user_id", userID, "error", err)
		return ResetLinkInvalid{}
	}

	if user == nil {
		logger.Info("password reset for unknown account", "user_id", userID)
		return ResetAccountNotFound{UserID: userID}
	}

	hash, err := w.hasher(req.Password)
	if err != nil {
		logger.Error("failed to hash new password", "user_id", userID, "error", err)
		return ResetLinkInvalid{}
	}

	if err := ctx.Err(); err != nil {
		logger.Error("password reset cancelled", "user_id", userID, "error", err)
		return ResetLinkInvalid{}
	}

	result, err := w.store.ResetPassword(ctx, user, token, hash)
	if IsRejectedError(err) {
		result, err = TokenRejected(RejectionReasons(err)...), nil
	}
	if err != nil {
		logger.Error("failed to reset password", "user_id", userID, "error", err)
		return ResetLinkInvalid{}
	}

	if !result.Succeeded {
		logger.Warn("password reset rejected", "user_id", userID, "error", NewRejectedError(result.Reasons...))
		return ResetRejected{UserID: userID, Reasons: result.Reasons}
	}

	logger.Info("password changed", "user_id", userID)
	return PasswordChanged{UserID: userID}
}
