// Package activitymap flattens account activity events into audit records
// keyed by actor, verb and object.
package activitymap

import (
	"fmt"
	"strings"
	"time"

	auth "github.com/goliatone/go-auth-confirm"
)

// Account verbs used in normalized records.
const (
	VerbIssueToken           = "issue_token"
	VerbConfirmEmail         = "confirm_email"
	VerbSendConfirmation     = "send_confirmation"
	VerbRequestPasswordReset = "request_password_reset"
	VerbResetPassword        = "reset_password"
)

const (
	MetadataKeyActorType = "actor_type"
	MetadataKeyTokenKind = "token_kind"
	MetadataKeyDelivery  = "delivery"
	MetadataKeyEvent     = "event"
)

// Channels group verbs by the credential they touch.
const (
	ChannelEmail    = "email"
	ChannelPassword = "password"
	ChannelAccount  = "account"
)

var verbs = map[auth.ActivityEventType]string{
	auth.ActivityEventTokenIssued:            VerbIssueToken,
	auth.ActivityEventEmailConfirmed:         VerbConfirmEmail,
	auth.ActivityEventConfirmationSent:       VerbSendConfirmation,
	auth.ActivityEventPasswordResetRequested: VerbRequestPasswordReset,
	auth.ActivityEventPasswordResetSuccess:   VerbResetPassword,
}

// Record is a flat activity record for audit stores and queues.
type Record struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Option func(*mapper)

type mapper struct {
	channel       string
	objectType    string
	actorFallback string
	now           func() time.Time
}

// WithChannel forces one channel for every record instead of deriving it
// from the event type.
func WithChannel(channel string) Option {
	return func(m *mapper) {
		m.channel = strings.TrimSpace(channel)
	}
}

// WithObjectType overrides the "user" object type.
func WithObjectType(objectType string) Option {
	return func(m *mapper) {
		if objectType = strings.TrimSpace(objectType); objectType != "" {
			m.objectType = objectType
		}
	}
}

// WithActorFallback sets the actor id used when the event names no actor.
func WithActorFallback(actorID string) Option {
	return func(m *mapper) {
		if actorID = strings.TrimSpace(actorID); actorID != "" {
			m.actorFallback = actorID
		}
	}
}

// WithClock sets the time used for events without OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(m *mapper) {
		if now != nil {
			m.now = now
		}
	}
}

// Normalize maps an account activity event to a Record. Token kinds are
// reported under token_kind and the raw event type under event.
func Normalize(event auth.ActivityEvent, opts ...Option) Record {
	m := mapper{
		objectType:    "user",
		actorFallback: "system",
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}

	actorID := strings.TrimSpace(event.Actor.ID)
	if actorID == "" {
		actorID = strings.TrimSpace(event.UserID)
	}
	if actorID == "" {
		actorID = m.actorFallback
	}

	channel := m.channel
	if channel == "" {
		channel = Channel(event.EventType)
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = m.now()
	}

	return Record{
		ActorID:    actorID,
		Verb:       Verb(event.EventType),
		ObjectType: m.objectType,
		ObjectID:   strings.TrimSpace(event.UserID),
		Channel:    channel,
		Metadata:   metadata(event),
		OccurredAt: occurredAt.UTC(),
	}
}

// Verb returns the account verb for an event type. Unknown types drop the
// "auth." prefix and join the remaining segments with underscores.
func Verb(eventType auth.ActivityEventType) string {
	if verb, ok := verbs[eventType]; ok {
		return verb
	}
	name := strings.TrimPrefix(string(eventType), "auth.")
	return strings.ReplaceAll(name, ".", "_")
}

// Channel derives the channel from the second segment of the event type.
func Channel(eventType auth.ActivityEventType) string {
	parts := strings.Split(string(eventType), ".")
	if len(parts) < 2 {
		return ChannelAccount
	}
	switch parts[1] {
	case "email":
		return ChannelEmail
	case "password":
		return ChannelPassword
	}
	return ChannelAccount
}

func metadata(event auth.ActivityEvent) map[string]any {
	out := make(map[string]any, len(event.Metadata)+2)
	for key, value := range event.Metadata {
		if key == "kind" {
			out[MetadataKeyTokenKind] = fmt.Sprint(value)
			continue
		}
		out[key] = value
	}

	if actorType := strings.TrimSpace(event.Actor.Type); actorType != "" {
		if _, ok := out[MetadataKeyActorType]; !ok {
			out[MetadataKeyActorType] = actorType
		}
	}
	if event.EventType != "" {
		out[MetadataKeyEvent] = string(event.EventType)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
