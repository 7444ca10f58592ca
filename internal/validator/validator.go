package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nikhil/teamtasks/internal/apperror"
)

const validationMessage = "Validation Error"

var validate = newValidate()

func newValidate() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())
	// Report fields by their JSON names so issues match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// max counts runes; maxbytes bounds the encoded length.
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

func maxBytes(fl playground.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Validate checks v against its `validate` tags and returns a validation
// apperror listing every failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Internal(err)
	}
	issues := make([]apperror.Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, apperror.Issue{Field: fe.Field(), Message: describe(fe)})
	}
	return apperror.Validation(validationMessage, issues)
}

// UUID validates an identifier taken from the URL or body.
func UUID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return apperror.Validation(validationMessage, []apperror.Issue{
			{Field: field, Message: "must be a valid UUID"},
		})
	}
	return nil
}

func describe(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must contain at most %s character(s)", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes long", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
