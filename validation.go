package auth

import (
	"errors"
	"strings"

	emailverifier "github.com/AfterShip/email-verifier"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	PasswordMinLength = 10
	PasswordMaxLength = 100
)

// newEmailVerifier returns a syntax only verifier. Network checks stay off.
func newEmailVerifier() *emailverifier.Verifier {
	verifier := emailverifier.NewVerifier()

	verifier.DisableSMTPCheck()
	verifier.DisableGravatarCheck()
	verifier.DisableDomainSuggest()
	verifier.DisableAutoUpdateDisposable()

	return verifier
}

// EmailRequest is the payload of the resend and password reset request forms.
type EmailRequest struct {
	Email string `form:"email" json:"email"`

	verifier *emailverifier.Verifier
}

// Validate runs field rules; email syntax is checked by ozzo and email-verifier.
func (r EmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			validation.Length(3, 254),
			is.Email,
			validation.By(r.checkSyntax),
		),
	)
}

func (r EmailRequest) checkSyntax(value any) error {
	email, _ := value.(string)
	if email == "" || r.verifier == nil {
		return nil
	}
	if !r.verifier.ParseAddress(email).Valid {
		return errors.New("must be a valid email address")
	}
	return nil
}

// PasswordResetRequest is the payload of the new password form.
type PasswordResetRequest struct {
	Code            string `form:"code" json:"code"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate checks the password policy. The code is validated by decoding it.
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(PasswordMinLength, PasswordMaxLength),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// ValidateStringEquals will check that both strings are equal
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must be equal")
		}
		return nil
	}
}

// fieldErrors flattens ozzo errors into field messages.
func fieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	fields := map[string]string{}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				fields[field] = ferr.Error()
			}
		}
		return fields
	}

	fields["_"] = strings.TrimSpace(err.Error())
	return fields
}
