package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-auth-confirm/responsecode"
	"github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConfirmEmailRendersConfirmedView(t *testing.T) {
	store := newControllerStore("ana@example.com", "T")
	ctrl := newTestAccountController(store)

	ctx := router.NewMockContext()
	ctx.QueriesM["code"] = responsecode.MustEncode(store.user.ID, "T")
	ctx.On("Context").Return(context.Background())

	var view router.ViewContext
	ctx.On("Render", ViewConfirmationResult, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		view = args.Get(1).(router.ViewContext)
	})

	err := ctrl.ConfirmEmail(ctx)
	require.NoError(t, err)
	ctx.AssertExpectations(t)

	assert.Equal(t, "confirmed", view["outcome"])
	assert.Equal(t, MessageEmailConfirmed, view["message"])
	assert.Equal(t, true, view["success"])
	assert.True(t, store.user.EmailValidated)
}

func TestConfirmEmailWithoutCodeOffersResend(t *testing.T) {
	store := newControllerStore("ana@example.com", "T")
	ctrl := newTestAccountController(store)

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	var view router.ViewContext
	ctx.On("Render", ViewConfirmationError, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		view = args.Get(1).(router.ViewContext)
	})

	err := ctrl.ConfirmEmail(ctx)
	require.NoError(t, err)
	ctx.AssertExpectations(t)

	assert.Equal(t, true, view["offer_resend"])
	assert.Equal(t, ctrl.Routes.Resend, view["resend_url"])
	assert.Equal(t, MessageLinkInvalid, view["message"])
	assert.Zero(t, store.confirmCalls)
}

func TestResendRendersSameViewForKnownAndUnknownEmails(t *testing.T) {
	store := newControllerStore("ana@example.com", "T")
	ctrl := newTestAccountController(store)

	render := func(email string) router.ViewContext {
		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())

		var view router.ViewContext
		ctx.On("Render", ViewResendConfirmation, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			view = args.Get(1).(router.ViewContext)
		})

		require.NoError(t, ctrl.resend(ctx, EmailPayload{Email: email}))
		ctx.AssertExpectations(t)
		return view
	}

	known := render("ana@example.com")
	unknown := render("nobody@example.com")

	assert.Equal(t, known["message"], unknown["message"])
	assert.Equal(t, known["tone"], unknown["tone"])
	assert.Equal(t, known["errors"], unknown["errors"])
	assert.Equal(t, MessageCheckInbox, known["message"])
}

func TestAccountFormsRenderBannerWhenPayloadCannotBind(t *testing.T) {
	bindErr := errors.New(`schema: invalid path "email[0]" at offset 3`)

	cases := []struct {
		name    string
		view    string
		message string
		handle  func(*AccountController, router.Context) error
	}{
		{"resend", ViewResendConfirmation, MessageInvalidEmail, (*AccountController).ResendPost},
		{"reset request", ViewPasswordResetStart, MessageInvalidEmail, (*AccountController).PasswordResetPost},
		{"reset execute", ViewPasswordResetStart, MessageResetLinkInvalid, (*AccountController).PasswordResetExecute},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newControllerStore("ana@example.com", "T")
			ctrl := newTestAccountController(store)
			ctrl.ErrorHandler = func(router.Context, error) error {
				t.Fatal("bind failures must not reach the error handler")
				return nil
			}

			ctx := router.NewMockContext()
			ctx.On("Context").Return(context.Background())
			ctx.On("Bind", mock.Anything).Return(bindErr)

			var view router.ViewContext
			ctx.On("Render", tc.view, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
				view = args.Get(1).(router.ViewContext)
			})

			require.NoError(t, tc.handle(ctrl, ctx))
			ctx.AssertExpectations(t)

			assert.Equal(t, tc.message, view["message"])
			assert.Equal(t, false, view["success"])
			assert.NotContains(t, view["message"], "schema")
			assert.Zero(t, store.confirmCalls)
			assert.Zero(t, store.resetCalls)
		})
	}
}

func TestResendPostBindFailureMarksEmailField(t *testing.T) {
	ctrl := newTestAccountController(newControllerStore("ana@example.com", "T"))

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Return(errors.New("unexpected EOF"))

	var view router.ViewContext
	ctx.On("Render", ViewResendConfirmation, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		view = args.Get(1).(router.ViewContext)
	})

	require.NoError(t, ctrl.ResendPost(ctx))
	assert.Equal(t, "validation_failed", view["outcome"])
	assert.Equal(t, map[string]string{"email": MessageInvalidEmail}, view["errors"])
	assert.Equal(t, EmailPayload{}, view["record"])
}

func TestDefaultErrorHandlerHidesErrorDetails(t *testing.T) {
	ctx := router.NewMockContext()

	var view router.ViewContext
	ctx.On("Render", "errors/500", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		view = args.Get(1).(router.ViewContext)
	})

	err := defaultErrHandler(ctx, errors.New("pq: relation \"users\" does not exist"))
	require.NoError(t, err)
	ctx.AssertExpectations(t)
	assert.Equal(t, MessageUnexpectedError, view["message"])
}

func TestResendShowDeniedByFeatureGate(t *testing.T) {
	ctrl := newTestAccountController(newControllerStore("ana@example.com", "T"))
	gateStub := &controllerGate{
		enabled: map[string]bool{FeatureConfirmationResend: false},
	}
	ctrl.featureGate = gateStub

	var handledErr error
	ctrl.ErrorHandler = func(ctx router.Context, err error) error {
		handledErr = err
		return nil
	}

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	err := ctrl.ResendShow(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, handledErr, ErrConfirmationResendDisabled)
	require.Equal(t, []string{FeatureConfirmationResend}, gateStub.calls)
}

func TestPasswordResetFormRejectsMalformedCode(t *testing.T) {
	ctrl := newTestAccountController(newControllerStore("ana@example.com", "T"))

	ctx := router.NewMockContext()
	ctx.QueriesM["code"] = "%%%"
	ctx.On("Context").Return(context.Background())

	var view router.ViewContext
	ctx.On("Render", ViewPasswordResetStart, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		view = args.Get(1).(router.ViewContext)
	})

	err := ctrl.PasswordResetForm(ctx)
	require.NoError(t, err)
	ctx.AssertExpectations(t)
	assert.Equal(t, MessageResetLinkInvalid, view["message"])
}

func TestPasswordResetFormOffersNewResetLink(t *testing.T) {
	ctrl := newTestAccountController(newControllerStore("ana@example.com", "T"))

	ctx := router.NewMockContext()
	ctx.QueriesM["code"] = "not-base64!!"
	ctx.On("Context").Return(context.Background())

	var view router.ViewContext
	ctx.On("Render", ViewPasswordResetStart, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		view = args.Get(1).(router.ViewContext)
	})

	require.NoError(t, ctrl.PasswordResetForm(ctx))
	ctx.AssertExpectations(t)

	assert.Equal(t, true, view["offer_resend"])
	assert.Equal(t, "password_reset", view["resend"])
	assert.Equal(t, "/account/password-reset", view["resend_url"])
}

func TestResendURLFollowsConfiguredRoutes(t *testing.T) {
	ctrl := newTestAccountController(newControllerStore("ana@example.com", "T"))
	ctrl.Routes = &AccountControllerRoutes{
		Resend:        "/verify/again",
		PasswordReset: "/forgot",
	}

	for _, tc := range []struct {
		outcome interface{ Presentation() Presentation }
		want    string
	}{
		{LinkInvalid{}, "/verify/again"},
		{ConfirmationRejected{}, "/verify/again"},
		{ResetLinkInvalid{}, "/forgot"},
		{ResetAccountNotFound{}, "/forgot"},
		{ResetRejected{}, "/forgot"},
		{EmailConfirmed{}, ""},
	} {
		assert.Equal(t, tc.want, ctrl.resendURL(tc.outcome.Presentation().Resend))
	}
}

func TestPasswordResetFormCarriesCode(t *testing.T) {
	store := newControllerStore("ana@example.com", "T")
	ctrl := newTestAccountController(store)
	code := responsecode.MustEncode(store.user.ID, "T")

	ctx := router.NewMockContext()
	ctx.QueriesM["code"] = code
	ctx.On("Context").Return(context.Background())

	var view router.ViewContext
	ctx.On("Render", ViewPasswordResetForm, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		view = args.Get(1).(router.ViewContext)
	})

	err := ctrl.PasswordResetForm(ctx)
	require.NoError(t, err)
	ctx.AssertExpectations(t)
	assert.Equal(t, PasswordResetPayload{Code: code}, view["record"])
}

func TestPasswordResetDoesNotEchoPasswords(t *testing.T) {
	store := newControllerStore("ana@example.com", "T")
	ctrl := newTestAccountController(store)
	code := responsecode.MustEncode(store.user.ID, "T")

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	var view router.ViewContext
	ctx.On("Render", ViewPasswordResetForm, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		view = args.Get(1).(router.ViewContext)
	})

	err := ctrl.resetPassword(ctx, PasswordResetPayload{
		Code:            code,
		Password:        "password12345",
		ConfirmPassword: "different12345",
	})
	require.NoError(t, err)
	ctx.AssertExpectations(t)

	assert.Equal(t, PasswordResetPayload{Code: code}, view["record"])
	assert.Contains(t, view["errors"], "confirm_password")
	assert.Zero(t, store.resetCalls)
}

func TestPasswordResetChangesPassword(t *testing.T) {
	store := newControllerStore("ana@example.com", "T")
	ctrl := newTestAccountController(store)

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Render", ViewPasswordChanged, mock.Anything).Return(nil)

	err := ctrl.resetPassword(ctx, PasswordResetPayload{
		Code:            responsecode.MustEncode(store.user.ID, "T"),
		Password:        "password12345",
		ConfirmPassword: "password12345",
	})
	require.NoError(t, err)
	ctx.AssertExpectations(t)
	assert.Equal(t, 1, store.resetCalls)
}

func TestNewAccountControllerRequiresWorkflow(t *testing.T) {
	assert.Panics(t, func() {
		NewAccountController()
	})
}

func newTestAccountController(store IdentityStore) *AccountController {
	links, err := NewRouteLinkBuilder("https://example.test", nil)
	if err != nil {
		panic(err)
	}
	notifier := NewObservableNotifier()
	hasher := WithPasswordHasher(func(pw string) (string, error) { return "hashed:" + pw, nil })

	return NewAccountController(
		WithConfirmationWorkflow(NewConfirmationWorkflow(store, notifier, links)),
		WithPasswordResetWorkflow(NewPasswordResetWorkflow(store, notifier, links, hasher)),
	)
}

// controllerStore holds a single unconfirmed account with one valid token.
type controllerStore struct {
	user         *User
	token        string
	confirmCalls int
	resetCalls   int
}

func newControllerStore(email, token string) *controllerStore {
	return &controllerStore{
		user:  &User{ID: uuid.New(), Email: email},
		token: token,
	}
}

func (s *controllerStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return nil, nil
}

func (s *controllerStore) FindByEmail(_ context.Context, email string) (*User, error) {
	if email == s.user.Email {
		return s.user, nil
	}
	return nil, nil
}

func (s *controllerStore) GenerateConfirmationToken(context.Context, *User) (string, error) {
	return s.token, nil
}

func (s *controllerStore) GeneratePasswordResetToken(context.Context, *User) (string, error) {
	return s.token, nil
}

func (s *controllerStore) ConfirmToken(_ context.Context, user *User, token string) (TokenResult, error) {
	s.confirmCalls++
	if token != s.token {
		return TokenRejected(ReasonInvalidToken), nil
	}
	user.EmailValidated = true
	return TokenAccepted(), nil
}

func (s *controllerStore) ResetPassword(_ context.Context, user *User, token, hash string) (TokenResult, error) {
	s.resetCalls++
	if token != s.token {
		return TokenRejected(ReasonInvalidToken), nil
	}
	user.PasswordHash = hash
	return TokenAccepted(), nil
}

type controllerGate struct {
	enabled map[string]bool
	calls   []string
}

func (g *controllerGate) Enabled(_ context.Context, key string, _ ...gate.ResolveOption) (bool, error) {
	g.calls = append(g.calls, key)
	enabled, ok := g.enabled[key]
	if !ok {
		return true, nil
	}
	return enabled, nil
}
