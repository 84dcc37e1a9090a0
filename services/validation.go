package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"quizhub/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

const (
	quizTitleRule       = "min=6,max=64"
	quizDescriptionRule = "max=64"
	questionTextRule    = "min=4,max=2048"
	answerTextRule      = "min=4,max=2048"
)

// newValidator reports fields by their json names. The bcryptlen rule
// bounds a password in bytes, since max= counts runes.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

// validateStruct runs the `validate` tags of v and reports the first
// violation as a Validation error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Wrap(apperrors.KindValidation, "invalid request", err)
	}
	fe := fieldErrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return apperrors.Validation(fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag()))
}

// validateField checks a single patch value against rule.
func validateField(name string, value any, rule string) error {
	err := validate.Var(value, rule)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.Validation(fmt.Sprintf("%s failed on the '%s' rule", name, fieldErrs[0].Tag()))
	}
	return apperrors.Wrap(apperrors.KindValidation, name+" is invalid", err)
}
