package validators

import (
	"errors"
	"strings"
)

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	// ErrValidationFailed matches every ValidationErrors value.
	ErrValidationFailed = errors.New("validation failed")

	// ErrAlreadyTaken matches ValidationErrors produced by the availability
	// pre-check.
	ErrAlreadyTaken = errors.New("value already taken")

	ErrCheckingAvailability = errors.New("error checking availability")
)

// FieldError holds the messages of one form field.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
	taken    bool
}

// ValidationErrors lists failing fields in form order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range v {
		parts = append(parts, f.Field+": "+strings.Join(f.Messages, " "))
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	switch target {
	case ErrValidationFailed:
		return true
	case ErrAlreadyTaken:
		for _, f := range v {
			if f.taken {
				return true
			}
		}
	}
	return false
}

// Messages returns the messages of field, or nil.
func (v ValidationErrors) Messages(field string) []string {
	for _, f := range v {
		if f.Field == field {
			return f.Messages
		}
	}
	return nil
}

// Map returns the messages keyed by field.
func (v ValidationErrors) Map() map[string][]string {
	m := make(map[string][]string, len(v))
	for _, f := range v {
		m[f.Field] = f.Messages
	}
	return m
}

func (v *ValidationErrors) add(field, message string, taken bool) {
	for i := range *v {
		if (*v)[i].Field == field {
			(*v)[i].Messages = append((*v)[i].Messages, message)
			(*v)[i].taken = (*v)[i].taken || taken
			return
		}
	}
	*v = append(*v, FieldError{Field: field, Messages: []string{message}, taken: taken})
}

// AlreadyTaken reports field as taken. It lets callers surface a uniqueness
// conflict detected by the store the same way the pre-check does.
func AlreadyTaken(field string) ValidationErrors {
	var verrs ValidationErrors
	verrs.add(field, message(field, tagUnique, ""), true)
	return verrs
}
