package handlers

import (
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"taskBoard/internal/service"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest turns the first failed struct rule into a validation error.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return service.NewValidationError(fe.Field(), describeRule(fe))
	}
	return service.NewValidationError("request", err.Error())
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "datetime":
		return "expected " + strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD").Replace(fe.Param())
	default:
		return "failed " + fe.Tag() + " rule"
	}
}

func mediaType(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}
