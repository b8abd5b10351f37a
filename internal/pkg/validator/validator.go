package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

var (
	wrapCategories = []string{"vehicle", "furniture", "wall", "building", "electronics", "box", "auto_tuning", "general_item"}
	txTypes        = []string{"purchase", "consumption", "refund", "adjustment"}
	appRoles       = []string{"user", "admin", "owner"}
	uploadFolders  = []string{"object", "material"}
)

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func registerCustomValidations() {
	validate.RegisterValidation("wrap_category", oneOf(wrapCategories))
	validate.RegisterValidation("tx_type", oneOf(txTypes))
	validate.RegisterValidation("app_role", oneOf(appRoles))
	validate.RegisterValidation("upload_folder", oneOf(uploadFolders))
	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.IsSlug(fl.Field().String())
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range validationErrors {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "ne":
			errors[field] = "Value must not be " + err.Param()
		case "url", "http_url":
			errors[field] = "Invalid URL format"
		case "wrap_category":
			errors[field] = "Invalid category. Must be one of: " + strings.Join(wrapCategories, ", ")
		case "tx_type":
			errors[field] = "Invalid transaction type. Must be one of: " + strings.Join(txTypes, ", ")
		case "app_role":
			errors[field] = "Invalid role. Must be one of: " + strings.Join(appRoles, ", ")
		case "upload_folder":
			errors[field] = "Invalid folder. Must be one of: " + strings.Join(uploadFolders, ", ")
		case "slug":
			errors[field] = "Invalid slug"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
