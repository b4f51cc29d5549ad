package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Outcome      PasswordResetRequestOutcome `json:"-"`
	Presentation Presentation                `json:"presentation"`
}

type InitializePasswordResetHandler struct {
	workflow    *PasswordResetWorkflow
	featureGate gate.FeatureGate
}

// NewInitializePasswordResetHandler adapts RequestPasswordReset to the command style.
func NewInitializePasswordResetHandler(workflow *PasswordResetWorkflow) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{workflow: workflow}
}

// WithFeatureGate enables gating with the password reset feature.
func (h *InitializePasswordResetHandler) WithFeatureGate(featureGate gate.FeatureGate) *InitializePasswordResetHandler {
	h.featureGate = featureGate
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	if err := requirePasswordResetGate(ctx, h.featureGate, false); err != nil {
		return err
	}

	if h.workflow == nil {
		return goerrors.New("password reset handler requires a workflow", goerrors.CategoryInternal)
	}

	outcome := h.workflow.RequestPasswordReset(ctx, event.Email)

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{
			Outcome:      outcome,
			Presentation: outcome.Presentation(),
		})
	}

	return nil
}
