package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
)

type ResendConfirmationMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email"`
	OnResponse func(resp *ResendConfirmationResponse)
}

func (m ResendConfirmationMessage) Type() string { return "user.email_confirmation.resend" }

type ResendConfirmationResponse struct {
	Outcome      ResendOutcome `json:"-"`
	Presentation Presentation  `json:"presentation"`
}

type ResendConfirmationHandler struct {
	workflow    *ConfirmationWorkflow
	featureGate gate.FeatureGate
}

// NewResendConfirmationHandler adapts the resend workflow to the command style.
func NewResendConfirmationHandler(workflow *ConfirmationWorkflow) *ResendConfirmationHandler {
	return &ResendConfirmationHandler{workflow: workflow}
}

// WithFeatureGate enables gating with FeatureConfirmationResend.
func (h *ResendConfirmationHandler) WithFeatureGate(featureGate gate.FeatureGate) *ResendConfirmationHandler {
	h.featureGate = featureGate
	return h
}

func (h *ResendConfirmationHandler) Execute(ctx context.Context, event ResendConfirmationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during confirmation resend")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendConfirmationHandler) execute(ctx context.Context, event ResendConfirmationMessage) error {
	if err := requireConfirmationResendGate(ctx, h.featureGate); err != nil {
		return err
	}

	if h.workflow == nil {
		return goerrors.New("confirmation resend handler requires a workflow", goerrors.CategoryInternal)
	}

	outcome := h.workflow.ResendConfirmation(ctx, event.Email)

	if event.OnResponse != nil {
		event.OnResponse(&ResendConfirmationResponse{
			Outcome:      outcome,
			Presentation: outcome.Presentation(),
		})
	}

	return nil
}
