package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// VerificationTokens persists hashed account action tokens
type VerificationTokens interface {
	repository.Repository[*VerificationToken]

	Issue(ctx context.Context, userID uuid.UUID, kind TokenKind, tokenHash string) (*VerificationToken, error)
	IssueTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, kind TokenKind, tokenHash string) (*VerificationToken, error)
	FindActive(ctx context.Context, userID uuid.UUID, kind TokenKind, tokenHash string) (*VerificationToken, error)
	FindActiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, kind TokenKind, tokenHash string) (*VerificationToken, error)
	ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error)
}

type verificationTokens struct {
	repository.Repository[*VerificationToken]
	db  *bun.DB
	now func() time.Time
}

var _ VerificationTokens = (*verificationTokens)(nil)

type VerificationTokensOption func(*verificationTokens)

// WithVerificationTokensClock injects a custom clock (useful for tests).
func WithVerificationTokensClock(clock func() time.Time) VerificationTokensOption {
	return func(v *verificationTokens) {
		if clock != nil {
			v.now = clock
		}
	}
}

func NewVerificationTokensRepository(db *bun.DB, opts ...VerificationTokensOption) VerificationTokens {
	handlers := repository.ModelHandlers[*VerificationToken]{
		NewRecord: func() *VerificationToken {
			return &VerificationToken{}
		},
		GetID: func(record *VerificationToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *VerificationToken, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token_hash"
		},
	}

	repo := &verificationTokens{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (r *verificationTokens) Issue(ctx context.Context, userID uuid.UUID, kind TokenKind, tokenHash string) (*VerificationToken, error) {
	return r.IssueTx(ctx, r.db, userID, kind, tokenHash)
}

func (r *verificationTokens) IssueTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, kind TokenKind, tokenHash string) (*VerificationToken, error) {
	now := r.now()
	record := &VerificationToken{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		TokenHash: tokenHash,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	return r.Repository.CreateTx(ctx, tx, record)
}

func (r *verificationTokens) FindActive(ctx context.Context, userID uuid.UUID, kind TokenKind, tokenHash string) (*VerificationToken, error) {
	return r.FindActiveTx(ctx, r.db, userID, kind, tokenHash)
}

// FindActiveTx returns the unconsumed token matching hash, kind and owner.
// Expiry is left to the caller.
func (r *verificationTokens) FindActiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, kind TokenKind, tokenHash string) (*VerificationToken, error) {
	record := &VerificationToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token_hash = ?", tokenHash).
		Where("?TableAlias.kind = ?", kind).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.consumed_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
					"kind":    kind,
				})
		}
		return nil, err
	}
	return record, nil
}

// ConsumeTx marks the token as used. It reports false when another request
// consumed it first.
func (r *verificationTokens) ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error) {
	consumed := MarkTokenAsConsumed(id)
	consumed.ConsumedAt = timePtr(r.now())
	consumed.UpdatedAt = consumed.ConsumedAt

	res, err := tx.NewUpdate().
		Model(consumed).
		Column("consumed_at", "updated_at").
		Where("id = ?", id).
		Where("consumed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
