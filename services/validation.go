package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"publicseva-be/apperrors"
	"publicseva-be/models"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations adds the custom tags used by request payloads:
// issuestatus, lnglat and emailaddr.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("issuestatus", func(fl validator.FieldLevel) bool {
		return models.IssueStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("lnglat", func(fl validator.FieldLevel) bool {
		coords, ok := fl.Field().Interface().([]float64)
		if !ok {
			return false
		}
		return models.GeoPoint{Coordinates: coords}.Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
}

// validateStruct runs the struct validator and converts the first failure into a
// VALIDATION error with a readable message.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation(err.Error())
	}
	return apperrors.Validation(describeField(fieldErrs[0]))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "emailaddr":
		return "Please provide a valid email address"
	case "lnglat":
		return "Location coordinates must be [longitude, latitude]"
	case "issuestatus":
		return fmt.Sprintf("%s is not a valid status", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ParseID turns a hex id from a path into an ObjectID, rejecting malformed input.
func ParseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation(fmt.Sprintf("Invalid %s id", what))
	}
	return id, nil
}
