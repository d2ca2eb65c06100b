package services

import (
	"reflect"
	"strings"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata and is safe for concurrent use
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so errors match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})

	return v
}

// complaintFields is the validated shape of a new complaint
type complaintFields struct {
	Category    string `json:"category" validate:"required,category"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// statusFields is the validated shape of an administrator status change
type statusFields struct {
	Status string `json:"status" validate:"required,status"`
}

// Validate checks a request body carrying validate tags (register, login)
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fromValidator(err)
	}
	return nil
}
