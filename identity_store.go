package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	ReasonInvalidToken  = "invalid token"
	ReasonTokenExpired  = "token expired"
	ReasonTokenConsumed = "token already used"
)

// RepositoryIdentityStore implements IdentityStore on top of the bun repositories.
type RepositoryIdentityStore struct {
	repo     RepositoryManager
	config   Config
	generate TokenGenerator
	now      func() time.Time
	logger   Logger
	logs     LoggerProvider
	activity ActivitySink
}

var _ IdentityStore = (*RepositoryIdentityStore)(nil)

// IdentityStoreOption customizes the repository backed store.
type IdentityStoreOption func(*RepositoryIdentityStore)

// WithStoreConfig overrides token TTLs.
func WithStoreConfig(cfg Config) IdentityStoreOption {
	return func(s *RepositoryIdentityStore) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithStoreTokenGenerator replaces the random token source.
func WithStoreTokenGenerator(gen TokenGenerator) IdentityStoreOption {
	return func(s *RepositoryIdentityStore) {
		if gen != nil {
			s.generate = gen
		}
	}
}

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) IdentityStoreOption {
	return func(s *RepositoryIdentityStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithStoreLogger overrides the logger.
func WithStoreLogger(logger Logger) IdentityStoreOption {
	return func(s *RepositoryIdentityStore) {
		s.logger = logger
	}
}

// WithStoreLoggerProvider resolves the logger from a provider.
func WithStoreLoggerProvider(provider LoggerProvider) IdentityStoreOption {
	return func(s *RepositoryIdentityStore) {
		s.logs = provider
	}
}

// WithStoreActivitySink sets the sink used to emit token events.
func WithStoreActivitySink(sink ActivitySink) IdentityStoreOption {
	return func(s *RepositoryIdentityStore) {
		s.activity = normalizeActivitySink(sink)
	}
}

// NewRepositoryIdentityStore creates a store with sane defaults.
func NewRepositoryIdentityStore(repo RepositoryManager, opts ...IdentityStoreOption) *RepositoryIdentityStore {
	s := &RepositoryIdentityStore{
		repo:     repo,
		config:   DefaultConfig(),
		generate: RandomToken,
		now:      time.Now,
		activity: noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = resolveLogger(s.logs, s.logger)
	return s
}

func (s *RepositoryIdentityStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, nil
	}

	user, err := s.repo.Users().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user by id")
	}
	return user, nil
}

func (s *RepositoryIdentityStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user by email")
	}
	return user, nil
}

func (s *RepositoryIdentityStore) GenerateConfirmationToken(ctx context.Context, user *User) (string, error) {
	return s.issue(ctx, user, TokenKindEmailConfirmation)
}

func (s *RepositoryIdentityStore) GeneratePasswordResetToken(ctx context.Context, user *User) (string, error) {
	return s.issue(ctx, user, TokenKindPasswordReset)
}

// ConfirmToken consumes a confirmation token and flags the email as confirmed
// in one transaction.
func (s *RepositoryIdentityStore) ConfirmToken(ctx context.Context, user *User, token string) (TokenResult, error) {
	if user == nil {
		return TokenResult{}, ErrUserNotFound
	}

	result := TokenAccepted()
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		verdict, err := s.consume(ctx, tx, user, TokenKindEmailConfirmation, token, s.config.GetConfirmationTokenTTL())
		if err != nil || !verdict.Succeeded {
			result = verdict
			return err
		}

		if err := s.repo.Users().MarkEmailConfirmedTx(ctx, tx, user.ID); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email as confirmed")
		}
		return nil
	})
	if err != nil {
		return TokenResult{}, normalizeStoreError(err, "failed to confirm token")
	}

	if result.Succeeded {
		now := s.now()
		user.EmailValidated = true
		user.EmailValidatedAt = &now
		s.record(ctx, ActivityEventEmailConfirmed, user, nil)
	}
	return result, nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *RepositoryIdentityStore) ResetPassword(ctx context.Context, user *User, token, passwordHash string) (TokenResult, error) {
	if user == nil {
		return TokenResult{}, ErrUserNotFound
	}

	result := TokenAccepted()
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		verdict, err := s.consume(ctx, tx, user, TokenKindPasswordReset, token, s.config.GetPasswordResetTokenTTL())
		if err != nil || !verdict.Succeeded {
			result = verdict
			return err
		}

		if err := s.repo.Users().ResetPasswordTx(ctx, tx, user.ID, passwordHash); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password in database")
		}
		return nil
	})
	if err != nil {
		return TokenResult{}, normalizeStoreError(err, "failed to reset password")
	}

	if result.Succeeded {
		s.record(ctx, ActivityEventPasswordResetSuccess, user, nil)
	}
	return result, nil
}

func (s *RepositoryIdentityStore) issue(ctx context.Context, user *User, kind TokenKind) (string, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", ErrUserNotFound
	}

	token, err := s.generate()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate token")
	}
	if token == "" {
		return "", goerrors.New("token generator returned an empty token", goerrors.CategoryInternal)
	}

	if _, err := s.repo.VerificationTokens().Issue(ctx, user.ID, kind, HashToken(token)); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist verification token").
			WithMetadata(map[string]any{"kind": kind})
	}

	s.record(ctx, ActivityEventTokenIssued, user, map[string]any{"kind": kind})
	return token, nil
}

func (s *RepositoryIdentityStore) consume(ctx context.Context, tx bun.IDB, user *User, kind TokenKind, token, ttl string) (TokenResult, error) {
	if strings.TrimSpace(token) == "" {
		return TokenRejected(ReasonInvalidToken), nil
	}

	record, err := s.repo.VerificationTokens().FindActiveTx(ctx, tx, user.ID, kind, HashToken(token))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return TokenRejected(ReasonInvalidToken), nil
		}
		return TokenResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve verification token")
	}

	if record.CreatedAt == nil {
		return TokenResult{}, goerrors.New("verification token is missing creation date", goerrors.CategoryInternal)
	}

	valid, err := isWithinThreshold(s.now(), *record.CreatedAt, ttl)
	if err != nil {
		return TokenResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check token expiration period")
	}
	if !valid {
		return TokenRejected(ReasonTokenExpired), nil
	}

	ok, err := s.repo.VerificationTokens().ConsumeTx(ctx, tx, record.ID)
	if err != nil {
		return TokenResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification token")
	}
	if !ok {
		return TokenRejected(ReasonTokenConsumed), nil
	}

	return TokenAccepted(), nil
}

func (s *RepositoryIdentityStore) record(ctx context.Context, eventType ActivityEventType, user *User, metadata map[string]any) {
	event := ActivityEvent{
		EventType: eventType,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID:     user.ID.String(),
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	if err := normalizeActivitySink(s.activity).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink error", "event", eventType, "error", err)
	}
}

func normalizeStoreError(err error, message string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message)
}
