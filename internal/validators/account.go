package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/models"
	"github.com/go-playground/validator/v10"
)

// Field name constants used to restrict validation to a subset of fields.
// They equal the form keys of the submitted fields.
const (
	FieldUsername             = "username"
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
)

// AccountValidator validates login and registration forms. When built with
// an AvailabilityChecker it also rejects registrations whose username or
// email is already in use. That check is advisory; the store's unique
// indexes stay authoritative.
type AccountValidator struct {
	validate     *validator.Validate
	availability AvailabilityChecker
}

// NewAccountValidator builds the validator. availability may be nil, in
// which case the uniqueness pre-check is skipped.
func NewAccountValidator(availability AvailabilityChecker) *AccountValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	// registration of a static rule cannot fail
	_ = v.RegisterValidation(tagPasswordClasses, passwordClasses)
	_ = v.RegisterValidation(tagMaxBytes, maxBytes)

	return &AccountValidator{validate: v, availability: availability}
}

// Validate dispatches to the form specific validation. fields restricts the
// reported fields; unknown names yield ErrUnknownField.
func (v *AccountValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.LoginForm:
		return v.validateForm(ctx, value, fields)
	case *models.LoginForm:
		return v.validateForm(ctx, *value, fields)

	case models.RegistrationForm:
		return v.validateRegistration(ctx, value, fields)
	case *models.RegistrationForm:
		return v.validateRegistration(ctx, *value, fields)

	default:
		return ErrUnsupportedType
	}
}

func (v *AccountValidator) validateRegistration(ctx context.Context, form models.RegistrationForm, fields []string) error {
	err := v.validateForm(ctx, form, fields)

	var verrs ValidationErrors
	if err != nil && !errors.As(err, &verrs) {
		return err
	}

	if v.availability != nil {
		if checkErr := v.checkAvailability(ctx, form, fields, &verrs); checkErr != nil {
			return checkErr
		}
	}

	if len(verrs) == 0 {
		return nil
	}
	return verrs
}

func (v *AccountValidator) validateForm(ctx context.Context, form any, fields []string) error {
	if err := checkFields(fields); err != nil {
		return err
	}

	var err error
	if len(fields) == 0 {
		err = v.validate.StructCtx(ctx, form)
	} else {
		err = v.validate.StructPartialCtx(ctx, form, structFieldNames(form, fields)...)
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}

	var verrs ValidationErrors
	for _, fe := range fieldErrs {
		verrs.add(fe.Field(), fieldErrorMessage(fe), false)
	}
	return verrs
}

// checkAvailability appends "already taken" messages for the username and
// email, skipping fields that already failed syntactic validation.
func (v *AccountValidator) checkAvailability(ctx context.Context, form models.RegistrationForm, fields []string, verrs *ValidationErrors) error {
	log := logger.FromContext(ctx)

	checks := []struct {
		field  string
		value  string
		exists func(context.Context, string) (bool, error)
	}{
		{FieldUsername, form.Username, v.availability.UsernameExists},
		{FieldEmail, form.Email, v.availability.EmailExists},
	}

	for _, c := range checks {
		if !inScope(c.field, fields) || verrs.Messages(c.field) != nil {
			continue
		}

		taken, err := c.exists(ctx, c.value)
		if err != nil {
			log.Err(err).Str("func", "AccountValidator.checkAvailability").Str("field", c.field).Msg("availability lookup failed")
			return fmt.Errorf("%w: %w", ErrCheckingAvailability, err)
		}
		if taken {
			verrs.add(c.field, message(c.field, tagUnique, ""), true)
		}
	}

	return nil
}

// passwordClasses requires at least one upper-case letter, one lower-case
// letter and one digit, all from the ASCII range.
func passwordClasses(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// maxBytes compares the byte length of a string field with the rule
// parameter. max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func checkFields(fields []string) error {
	for _, f := range fields {
		switch f {
		case FieldUsername, FieldEmail, FieldPassword, FieldPasswordConfirmation:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}
	return nil
}

func inScope(field string, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

// structFieldNames maps form keys to the Go field names StructPartial
// expects. Keys the form does not have are dropped.
func structFieldNames(form any, fields []string) []string {
	t := reflect.TypeOf(form)
	names := make([]string, 0, len(fields))
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if inScope(strings.SplitN(sf.Tag.Get("form"), ",", 2)[0], fields) {
			names = append(names, sf.Name)
		}
	}
	return names
}
