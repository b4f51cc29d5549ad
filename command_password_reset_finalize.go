package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
)

type FinalizePasswordResetMessage struct {
	Code            string `json:"code" example:"0jvLm2mcQ4-0VhBDvx0Jy3Rva2VuLTE" doc:"Password reset response code"`
	Password        string `json:"password" example:"some_secret_word" doc:"Password"`
	ConfirmPassword string `json:"confirm_password" example:"some_secret_word" doc:"Password confirmation"`
	OnResponse      func(resp *FinalizePasswordResetResponse)
}

func (m FinalizePasswordResetMessage) Type() string { return "user.password_reset.finalize" }

type FinalizePasswordResetResponse struct {
	Outcome      PasswordResetOutcome `json:"-"`
	Presentation Presentation         `json:"presentation"`
}

type FinalizePasswordResetHandler struct {
	workflow    *PasswordResetWorkflow
	featureGate gate.FeatureGate
}

// NewFinalizePasswordResetHandler adapts ResetPassword to the command style.
func NewFinalizePasswordResetHandler(workflow *PasswordResetWorkflow) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{workflow: workflow}
}

// WithFeatureGate enables gating; finalize stays open when its override is on.
func (h *FinalizePasswordResetHandler) WithFeatureGate(featureGate gate.FeatureGate) *FinalizePasswordResetHandler {
	h.featureGate = featureGate
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	if err := requirePasswordResetGate(ctx, h.featureGate, true); err != nil {
		return err
	}

	if h.workflow == nil {
		return goerrors.New("password reset handler requires a workflow", goerrors.CategoryInternal)
	}

	outcome := h.workflow.ResetPassword(ctx, PasswordResetRequest{
		Code:            event.Code,
		Password:        event.Password,
		ConfirmPassword: event.ConfirmPassword,
	})

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{
			Outcome:      outcome,
			Presentation: outcome.Presentation(),
		})
	}

	return nil
}
