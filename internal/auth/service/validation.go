package service

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
)

const (
	minPasswordLength = 10
	maxPasswordLength = 256
	maxNameLength     = 191
	maxTitleLength    = 150
)

var (
	emailRules    = []validation.Rule{validation.Required, validation.Length(3, 191), is.Email}
	passwordRules = []validation.Rule{validation.Required, validation.Length(minPasswordLength, maxPasswordLength)}
	nameRules     = []validation.Rule{validation.Required, validation.Length(1, maxNameLength)}
)

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func validateEmail(email string) error {
	if err := validation.Validate(email, emailRules...); err != nil {
		return invalidField("email", err.Error())
	}
	return nil
}

type setupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Title    string `json:"blogTitle"`
}

func validateSetup(d domain.SetupData) error {
	in := setupInput{
		Name:     strings.TrimSpace(d.Name),
		Email:    normalizeEmail(d.Email),
		Password: d.Password,
		Title:    strings.TrimSpace(d.Title),
	}
	return fromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, nameRules...),
		validation.Field(&in.Email, emailRules...),
		validation.Field(&in.Password, passwordRules...),
		validation.Field(&in.Title, validation.Length(0, maxTitleLength)),
	))
}

// AcceptInvitationInput is the payload for redeeming an invitation.
type AcceptInvitationInput struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// validateShape checks only what is needed to look the invitation up.
func (in AcceptInvitationInput) validateShape() error {
	in.Email = normalizeEmail(in.Email)
	return fromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Token, validation.Required),
		validation.Field(&in.Email, emailRules...),
	))
}

// validateAccount checks the details of the account being created.
func (in AcceptInvitationInput) validateAccount() error {
	in.Name = strings.TrimSpace(in.Name)
	return fromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Password, passwordRules...),
		validation.Field(&in.Name, nameRules...),
	))
}

// ConfirmResetInput is the payload for redeeming a reset token.
type ConfirmResetInput struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (in ConfirmResetInput) validate() error {
	return fromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Token, validation.Required),
		validation.Field(&in.NewPassword, passwordRules...),
		validation.Field(&in.ConfirmPassword,
			validation.Required,
			validation.By(equalsString(in.NewPassword, "passwords do not match")),
		),
	))
}

func equalsString(want, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		if s, _ := value.(string); s != want {
			return errors.New(msg)
		}
		return nil
	}
}
