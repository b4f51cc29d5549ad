package auth

import (
	"context"
	"time"

	emailverifier "github.com/AfterShip/email-verifier"
)

// Workflow names reported to the OutcomeRecorder.
const (
	WorkflowConfirmEmail         = "confirm_email"
	WorkflowResendConfirmation   = "resend_confirmation"
	WorkflowRequestPasswordReset = "request_password_reset"
	WorkflowResetPassword        = "reset_password"
)

// PasswordHasher turns a plain password into the stored hash.
type PasswordHasher func(password string) (string, error)

// workflow holds the collaborators shared by the account workflows. It is
// immutable after construction.
type workflow struct {
	store    IdentityStore
	notifier Notifier
	links    LinkBuilder
	config   Config
	logger   Logger
	logs     LoggerProvider
	activity ActivitySink
	outcomes OutcomeRecorder
	verifier *emailverifier.Verifier
	hasher   PasswordHasher
	now      func() time.Time
}

// WorkflowOption customizes an account workflow.
type WorkflowOption func(*workflow)

// WithConfig sets timeouts and delivery options.
func WithConfig(cfg Config) WorkflowOption {
	return func(w *workflow) {
		if cfg != nil {
			w.config = cfg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) WorkflowOption {
	return func(w *workflow) {
		w.logger = logger
	}
}

// WithLoggerProvider resolves the named logger from provider.
func WithLoggerProvider(provider LoggerProvider) WorkflowOption {
	return func(w *workflow) {
		w.logs = provider
	}
}

// WithActivitySink sets the sink used to emit workflow events.
func WithActivitySink(sink ActivitySink) WorkflowOption {
	return func(w *workflow) {
		w.activity = normalizeActivitySink(sink)
	}
}

// WithOutcomeRecorder sets the recorder that counts terminal outcomes.
func WithOutcomeRecorder(recorder OutcomeRecorder) WorkflowOption {
	return func(w *workflow) {
		w.outcomes = normalizeOutcomeRecorder(recorder)
	}
}

// WithPasswordHasher replaces bcrypt hashing for new passwords.
func WithPasswordHasher(hasher PasswordHasher) WorkflowOption {
	return func(w *workflow) {
		if hasher != nil {
			w.hasher = hasher
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) WorkflowOption {
	return func(w *workflow) {
		if clock != nil {
			w.now = clock
		}
	}
}

func newWorkflow(store IdentityStore, notifier Notifier, links LinkBuilder, opts ...WorkflowOption) workflow {
	w := workflow{
		store:    store,
		notifier: notifier,
		links:    links,
		config:   DefaultConfig(),
		activity: noopActivitySink{},
		outcomes: noopOutcomeRecorder{},
		verifier: newEmailVerifier(),
		hasher:   HashPassword,
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&w)
		}
	}

	w.logger = resolveLogger(w.logs, w.logger)
	return w
}

func (w workflow) record(ctx context.Context, eventType ActivityEventType, user *User, metadata map[string]any) {
	if user == nil {
		return
	}

	event := ActivityEvent{
		EventType: eventType,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID:     user.ID.String(),
		Metadata:   metadata,
		OccurredAt: w.now(),
	}

	if err := w.activity.Record(ctx, event); err != nil {
		w.logger.Warn("activity sink error", "event", eventType, "error", err)
	}
}
