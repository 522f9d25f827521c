package validators

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tagPasswordClasses is the custom rule requiring an upper-case letter, a
// lower-case letter and a digit.
const tagPasswordClasses = "password_classes"

// tagMaxBytes limits the UTF-8 encoded length of a field. bcrypt refuses
// passwords longer than 72 bytes.
const tagMaxBytes = "max_bytes"

// tagUnique is not a struct tag; it keys the availability message.
const tagUnique = "unique"

// messageCatalog maps rule tags to message formats. The first verb receives
// the field label, the second the rule parameter.
var messageCatalog = map[string]string{
	"required":         "The %s field is required.",
	"min":              "The %s must be at least %s characters.",
	"max":              "The %s may not be greater than %s characters.",
	"email":            "The %s must be a valid email address.",
	"eqfield":          "The %s does not match.",
	tagMaxBytes:        "The %s may not be greater than %s bytes.",
	tagPasswordClasses: "The %s must contain at least one uppercase letter, one lowercase letter and one digit.",
	tagUnique:          "The %s has already been taken.",
}

const fallbackMessage = "The %s is invalid."

// label turns a form key such as password_confirmation into "password confirmation".
func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func message(field, tag, param string) string {
	format, ok := messageCatalog[tag]
	if !ok {
		format = fallbackMessage
	}
	if strings.Count(format, "%s") == 2 {
		return fmt.Sprintf(format, label(field), param)
	}
	return fmt.Sprintf(format, label(field))
}

func fieldErrorMessage(fe validator.FieldError) string {
	return message(fe.Field(), fe.Tag(), fe.Param())
}
