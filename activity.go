package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventTokenIssued            ActivityEventType = "auth.token.issued"
	ActivityEventEmailConfirmed         ActivityEventType = "auth.email.confirmed"
	ActivityEventConfirmationSent       ActivityEventType = "auth.email.confirmation_sent"
	ActivityEventPasswordResetRequested ActivityEventType = "auth.password.reset_requested"
	ActivityEventPasswordResetSuccess   ActivityEventType = "auth.password.reset"
)

// ActorRef identifies who triggered an activity.
type ActorRef struct {
	ID   string
	Type string
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// OutcomeRecorder counts workflow outcomes. Implementations must be safe for
// concurrent use.
type OutcomeRecorder interface {
	RecordOutcome(workflow, outcome string)
}

// OutcomeRecorderFunc adapts a function to OutcomeRecorder.
type OutcomeRecorderFunc func(workflow, outcome string)

// RecordOutcome implements OutcomeRecorder.
func (f OutcomeRecorderFunc) RecordOutcome(workflow, outcome string) {
	if f != nil {
		f(workflow, outcome)
	}
}

type noopOutcomeRecorder struct{}

func (noopOutcomeRecorder) RecordOutcome(string, string) {}

func normalizeOutcomeRecorder(r OutcomeRecorder) OutcomeRecorder {
	if r == nil {
		return noopOutcomeRecorder{}
	}
	return r
}
