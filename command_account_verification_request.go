package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

type ConfirmEmailMessage struct {
	Code       string `json:"code" example:"0jvLm2mcQ4-0VhBDvx0Jy3Rva2VuLTE" doc:"Email confirmation response code"`
	OnResponse func(resp *ConfirmEmailResponse)
}

func (m ConfirmEmailMessage) Type() string { return "user.email_confirmation" }

type ConfirmEmailResponse struct {
	Outcome      ConfirmationOutcome `json:"-"`
	Presentation Presentation        `json:"presentation"`
}

type ConfirmEmailHandler struct {
	workflow *ConfirmationWorkflow
}

// NewConfirmEmailHandler adapts the confirmation workflow to the command style.
func NewConfirmEmailHandler(workflow *ConfirmationWorkflow) *ConfirmEmailHandler {
	return &ConfirmEmailHandler{workflow: workflow}
}

func (h *ConfirmEmailHandler) Execute(ctx context.Context, event ConfirmEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email confirmation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailHandler) execute(ctx context.Context, event ConfirmEmailMessage) error {
	if h.workflow == nil {
		return goerrors.New("email confirmation handler requires a workflow", goerrors.CategoryInternal)
	}

	outcome := h.workflow.ConfirmEmail(ctx, event.Code)

	if event.OnResponse != nil {
		event.OnResponse(&ConfirmEmailResponse{
			Outcome:      outcome,
			Presentation: outcome.Presentation(),
		})
	}

	return nil
}
