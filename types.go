package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// Logger is the structured logger used across the package.
type Logger = glog.Logger

// LoggerProvider hands out named loggers.
type LoggerProvider = glog.LoggerProvider

const loggerName = "auth"

// IdentityStore is the system of record for accounts and verification tokens.
// Find methods return (nil, nil) when no account matches.
type IdentityStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	GenerateConfirmationToken(ctx context.Context, user *User) (string, error)
	ConfirmToken(ctx context.Context, user *User, token string) (TokenResult, error)
	GeneratePasswordResetToken(ctx context.Context, user *User) (string, error)
	ResetPassword(ctx context.Context, user *User, token, passwordHash string) (TokenResult, error)
}

// TokenResult is the store verdict on a presented token. Reasons explain a
// rejection and are safe to log.
type TokenResult struct {
	Succeeded bool
	Reasons   []string
}

// TokenAccepted is the successful TokenResult.
func TokenAccepted() TokenResult {
	return TokenResult{Succeeded: true}
}

// TokenRejected builds a failed TokenResult.
func TokenRejected(reasons ...string) TokenResult {
	return TokenResult{Succeeded: false, Reasons: reasons}
}

// Notifier delivers account action links and codes.
type Notifier interface {
	SendConfirmationLink(ctx context.Context, recipient, link string) error
	SendPasswordResetLink(ctx context.Context, recipient, link string) error
	SendPasswordResetCode(ctx context.Context, recipient, code string) error
}

// LinkBuilder resolves a logical action into an absolute URL. An empty URL
// is treated as a failure by callers.
type LinkBuilder interface {
	BuildLink(area, controller, action string, values map[string]string) (string, error)
}

// LinkBuilderFunc adapts a function to LinkBuilder.
type LinkBuilderFunc func(area, controller, action string, values map[string]string) (string, error)

// BuildLink implements LinkBuilder.
func (f LinkBuilderFunc) BuildLink(area, controller, action string, values map[string]string) (string, error) {
	return f(area, controller, action, values)
}

// Config holds account workflow options
type Config interface {
	GetOperationTimeout() time.Duration
	GetConfirmationTokenTTL() string
	GetPasswordResetTokenTTL() string
	GetPasswordResetDelivery() string
	GetBaseURL() string
}

// Options is the default Config implementation.
type Options struct {
	OperationTimeout      time.Duration `koanf:"operation_timeout" json:"operation_timeout"`
	ConfirmationTokenTTL  string        `koanf:"confirmation_token_ttl" json:"confirmation_token_ttl"`
	PasswordResetTokenTTL string        `koanf:"password_reset_token_ttl" json:"password_reset_token_ttl"`
	PasswordResetDelivery string        `koanf:"password_reset_delivery" json:"password_reset_delivery"`
	BaseURL               string        `koanf:"base_url" json:"base_url"`
}

const (
	// DeliverLink sends an absolute link embedding the response code.
	DeliverLink = "link"
	// DeliverCode sends the raw response code.
	DeliverCode = "code"
)

// DefaultConfig returns the options used when none are given.
func DefaultConfig() Options {
	return Options{
		OperationTimeout:      10 * time.Second,
		ConfirmationTokenTTL:  "24h",
		PasswordResetTokenTTL: "1h",
		PasswordResetDelivery: DeliverLink,
		BaseURL:               "http://localhost:8572",
	}
}

func (o Options) GetOperationTimeout() time.Duration {
	if o.OperationTimeout <= 0 {
		return DefaultConfig().OperationTimeout
	}
	return o.OperationTimeout
}

func (o Options) GetConfirmationTokenTTL() string {
	if o.ConfirmationTokenTTL == "" {
		return DefaultConfig().ConfirmationTokenTTL
	}
	return o.ConfirmationTokenTTL
}

func (o Options) GetPasswordResetTokenTTL() string {
	if o.PasswordResetTokenTTL == "" {
		return DefaultConfig().PasswordResetTokenTTL
	}
	return o.PasswordResetTokenTTL
}

func (o Options) GetPasswordResetDelivery() string {
	if o.PasswordResetDelivery == "" {
		return DeliverLink
	}
	return o.PasswordResetDelivery
}

func (o Options) GetBaseURL() string {
	return o.BaseURL
}

func resolveLogger(provider LoggerProvider, logger Logger) Logger {
	if logger != nil {
		return logger
	}
	provider, logger = glog.Resolve(loggerName, provider, logger)
	if provider != nil {
		if named := provider.GetLogger(loggerName); named != nil {
			return glog.Ensure(named)
		}
	}
	return glog.Ensure(logger)
}
