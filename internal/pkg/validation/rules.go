// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yigit/majlis/internal/app/models"
)

// Custom tags
const (
	NotBlankTag   = "notblank"
	ActiveViewTag = "activeview"
)

// Length bounds shared by request DTOs
const (
	PasswordMinLength = 8
	NameMinLength     = 2
	NameMaxLength     = 100
	TitleMaxLength    = 200
)

// Register installs the custom tags and makes errors report json or form field names
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation(NotBlankTag, notBlank); err != nil {
		return err
	}
	return v.RegisterValidation(ActiveViewTag, activeView)
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// notBlank rejects strings that are empty after trimming
func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func activeView(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return models.KnownView(str)
	}
	return false
}
