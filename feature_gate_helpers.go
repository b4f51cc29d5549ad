package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-featuregate/gate/guard"
)

// FeatureConfirmationResend gates re-sending confirmation emails.
const FeatureConfirmationResend = "users.email_confirmation.resend"

func normalizeFeatureGateError(err error) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return err
	}

	return errors.Wrap(err, errors.CategoryAuthz, "Feature gate check failed").
		WithCode(errors.CodeForbidden)
}

func requireConfirmationResendGate(ctx context.Context, featureGate gate.FeatureGate) error {
	if featureGate == nil {
		return nil
	}
	return guard.Require(ctx, featureGate, FeatureConfirmationResend,
		guard.WithDisabledError(ErrConfirmationResendDisabled),
		guard.WithErrorMapper(normalizeFeatureGateError),
	)
}

func requirePasswordResetGate(ctx context.Context, featureGate gate.FeatureGate, allowFinalize bool) error {
	if featureGate == nil {
		return nil
	}
	opts := []guard.Option{
		guard.WithDisabledError(ErrPasswordResetDisabled),
		guard.WithErrorMapper(normalizeFeatureGateError),
	}
	if allowFinalize {
		opts = append(opts, guard.WithOverrides(gate.FeatureUsersPasswordResetFinalize))
	}
	return guard.Require(ctx, featureGate, gate.FeatureUsersPasswordReset, opts...)
}
