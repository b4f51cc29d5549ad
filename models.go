package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel    `bun:"table:users,alias:usr"`
	ID               uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName        string         `bun:"first_name" json:"first_name,omitempty"`
	LastName         string         `bun:"last_name" json:"last_name,omitempty"`
	Username         string         `bun:"username,unique" json:"username,omitempty"`
	Email            string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash     string         `bun:"password_hash" json:"-"`
	EmailValidated   bool           `bun:"is_email_verified,notnull,default:false" json:"is_email_verified"`
	EmailValidatedAt *time.Time     `bun:"email_verified_at,nullzero" json:"email_verified_at,omitempty"`
	Metadata         map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	ResetedAt        *time.Time     `bun:"reseted_at,nullzero" json:"reseted_at,omitempty"`
	CreatedAt        *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt        *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EmailConfirmed reports whether the account email has been confirmed.
func (u *User) EmailConfirmed() bool {
	return u != nil && u.EmailValidated
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// TokenKind scopes a verification token to one account action
type TokenKind = string

const (
	// TokenKindEmailConfirmation confirms ownership of the account email
	TokenKindEmailConfirmation TokenKind = "email_confirmation"
	// TokenKindPasswordReset authorizes a password change
	TokenKindPasswordReset TokenKind = "password_reset"
)

// VerificationToken is a hashed, single use token issued by the identity store.
// The raw token only ever leaves the store inside a response code.
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vtk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Kind          TokenKind  `bun:"kind,notnull" json:"kind,omitempty"`
	TokenHash     string     `bun:"token_hash,notnull,unique" json:"-"`
	ConsumedAt    *time.Time `bun:"consumed_at,nullzero" json:"consumed_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Consumed reports whether the token was already used.
func (t *VerificationToken) Consumed() bool {
	return t != nil && t.ConsumedAt != nil
}

// MarkTokenAsConsumed will create a new instance
func MarkTokenAsConsumed(id uuid.UUID) *VerificationToken {
	t := &VerificationToken{}
	t.ID = id
	n := time.Now()
	t.ConsumedAt = &n
	t.UpdatedAt = &n
	return t
}
