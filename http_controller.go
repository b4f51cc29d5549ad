package auth

import (
	"github.com/goliatone/go-auth-confirm/responsecode"
	"github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAccountRoutes mounts the confirmation and password reset pages.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountControllerOption) *AccountController {

	controller := NewAccountController(opts...)

	if controller.confirmation != nil {
		app.Get(controller.Routes.Confirm, controller.ConfirmEmail).
			SetName("account-confirm.get")

		app.Get(controller.Routes.Resend, controller.ResendShow).
			SetName("account-confirm-resend.get")
		app.Post(controller.Routes.Resend, controller.ResendPost).
			SetName("account-confirm-resend.post")
	}

	if controller.passwordReset != nil {
		app.Get(controller.Routes.PasswordReset, controller.PasswordResetShow).
			SetName("pwd-reset.get")
		app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
			SetName("pwd-reset.post")

		app.Get(controller.Routes.PasswordResetConfirm, controller.PasswordResetForm).
			SetName("pwd-reset-do.get")
		app.Post(controller.Routes.PasswordResetConfirm, controller.PasswordResetExecute).
			SetName("pwd-reset-do.post")
	}

	return controller
}

type AccountControllerRoutes struct {
	Confirm              string
	Resend               string
	PasswordReset        string
	PasswordResetConfirm string
}

// DefaultAccountRoutes matches the paths used by DefaultRoutes.
func DefaultAccountRoutes() *AccountControllerRoutes {
	return &AccountControllerRoutes{
		Confirm:              "/account/confirm",
		Resend:               "/account/confirm/resend",
		PasswordReset:        "/account/password-reset",
		PasswordResetConfirm: "/account/password-reset/confirm",
	}
}

type AccountController struct {
	Debug        bool
	Logger       Logger
	Routes       *AccountControllerRoutes
	ErrorHandler router.ErrorHandler

	confirmation  *ConfirmationWorkflow
	passwordReset *PasswordResetWorkflow
	featureGate   gate.FeatureGate
}

type AccountControllerOption func(*AccountController) *AccountController

// WithConfirmationWorkflow enables the confirmation and resend pages.
func WithConfirmationWorkflow(workflow *ConfirmationWorkflow) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.confirmation = workflow
		return c
	}
}

// WithPasswordResetWorkflow enables the password reset pages.
func WithPasswordResetWorkflow(workflow *PasswordResetWorkflow) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.passwordReset = workflow
		return c
	}
}

func WithControllerFeatureGate(featureGate gate.FeatureGate) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.featureGate = featureGate
		return c
	}
}

func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRoutes(routes *AccountControllerRoutes) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func WithControllerErrorHandler(handler router.ErrorHandler) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

// WithControllerDebug logs every rendered outcome as JSON.
func WithControllerDebug(debug bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = debug
		return c
	}
}

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:       resolveLogger(nil, nil),
		ErrorHandler: defaultErrHandler,
		Routes:       DefaultAccountRoutes(),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.confirmation == nil && c.passwordReset == nil {
		panic("Missing account workflows in account controller...")
	}

	return c
}

// EmailPayload is the resend and password reset request form.
type EmailPayload struct {
	Email string `form:"email" json:"email"`
}

// PasswordResetPayload is the new password form.
type PasswordResetPayload struct {
	Code            string `form:"code" json:"code"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// ConfirmEmail handles the link sent by email.
func (a *AccountController) ConfirmEmail(ctx router.Context) error {
	outcome := a.confirmation.ConfirmEmail(ctx.Context(), ctx.Query("code"))
	return a.present(ctx, outcome.Name(), outcome.Presentation(), nil)
}

func (a *AccountController) ResendShow(ctx router.Context) error {
	if err := requireConfirmationResendGate(ctx.Context(), a.featureGate); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Render(ViewResendConfirmation, router.ViewContext{
		"errors": nil,
		"record": EmailPayload{},
	})
}

func (a *AccountController) ResendPost(ctx router.Context) error {
	if err := requireConfirmationResendGate(ctx.Context(), a.featureGate); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(EmailPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("resend confirmation parse payload", "error", err)
		outcome := ResendInvalid{Fields: map[string]string{"email": MessageInvalidEmail}}
		return a.present(ctx, outcome.Name(), outcome.Presentation(), EmailPayload{})
	}

	return a.resend(ctx, *payload)
}

func (a *AccountController) resend(ctx router.Context, payload EmailPayload) error {
	outcome := a.confirmation.ResendConfirmation(ctx.Context(), payload.Email)
	return a.present(ctx, outcome.Name(), outcome.Presentation(), payload)
}

func (a *AccountController) PasswordResetShow(ctx router.Context) error {
	if err := requirePasswordResetGate(ctx.Context(), a.featureGate, false); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Render(ViewPasswordResetStart, router.ViewContext{
		"errors": nil,
		"record": EmailPayload{},
	})
}

func (a *AccountController) PasswordResetPost(ctx router.Context) error {
	if err := requirePasswordResetGate(ctx.Context(), a.featureGate, false); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(EmailPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset parse payload", "error", err)
		outcome := ResetRequestInvalid{Fields: map[string]string{"email": MessageInvalidEmail}}
		return a.present(ctx, outcome.Name(), outcome.Presentation(), EmailPayload{})
	}

	return a.requestReset(ctx, *payload)
}

func (a *AccountController) requestReset(ctx router.Context, payload EmailPayload) error {
	outcome := a.passwordReset.RequestPasswordReset(ctx.Context(), payload.Email)
	return a.present(ctx, outcome.Name(), outcome.Presentation(), payload)
}

// PasswordResetForm shows the new password form when the code decodes.
func (a *AccountController) PasswordResetForm(ctx router.Context) error {
	if err := requirePasswordResetGate(ctx.Context(), a.featureGate, true); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	code := ctx.Query("code")
	if _, _, err := responsecode.Decode(code); err != nil {
		outcome := ResetLinkInvalid{}
		return a.present(ctx, outcome.Name(), outcome.Presentation(), nil)
	}

	return ctx.Render(ViewPasswordResetForm, router.ViewContext{
		"errors": nil,
		"record": PasswordResetPayload{Code: code},
	})
}

func (a *AccountController) PasswordResetExecute(ctx router.Context) error {
	if err := requirePasswordResetGate(ctx.Context(), a.featureGate, true); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(PasswordResetPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset finalize parse payload", "error", err)
		// without a readable code the form cannot be submitted again
		outcome := ResetLinkInvalid{}
		return a.present(ctx, outcome.Name(), outcome.Presentation(), nil)
	}

	if payload.Code == "" {
		payload.Code = ctx.Query("code")
	}

	return a.resetPassword(ctx, *payload)
}

func (a *AccountController) resetPassword(ctx router.Context, payload PasswordResetPayload) error {
	outcome := a.passwordReset.ResetPassword(ctx.Context(), PasswordResetRequest{
		Code:            payload.Code,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	})

	// never echo passwords back into the form
	payload.Password = ""
	payload.ConfirmPassword = ""

	return a.present(ctx, outcome.Name(), outcome.Presentation(), payload)
}

func (a *AccountController) present(ctx router.Context, outcome string, p Presentation, record any) error {
	if a.Debug {
		a.Logger.Debug("account outcome", "outcome", outcome, "presentation", print.MaybePrettyJSON(p))
	}

	return ctx.Render(p.View, router.ViewContext{
		"outcome":      outcome,
		"success":      p.Success(),
		"tone":         string(p.Tone),
		"message":      p.Message,
		"offer_resend": p.OfferResend,
		"resend":       string(p.Resend),
		"resend_url":   a.resendURL(p.Resend),
		"errors":       p.Fields,
		"record":       record,
	})
}

func (a *AccountController) resendURL(target ResendTarget) string {
	switch target {
	case ResendPasswordReset:
		return a.Routes.PasswordReset
	case ResendConfirmation:
		return a.Routes.Resend
	}
	return ""
}

// MessageUnexpectedError is rendered by the default error handler.
const MessageUnexpectedError = "Something went wrong. Please try again later."

func defaultErrHandler(c router.Context, _ error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": MessageUnexpectedError,
	})
}
