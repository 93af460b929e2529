package httpserver

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/service"
)

// fieldMessages are the user-facing messages per JSON field.
var fieldMessages = map[string]string{
	"title":           "Title must be greater than 3 characters length.",
	"price":           "Price must be a positive number.",
	"description":     "Enter a text between 5 and 400 characters",
	"imageUrl":        "Image URL is required.",
	"email":           "Please enter a valid email.",
	"password":        "Please enter a password with only numbers and text and at least 5 characters.",
	"confirmPassword": "Passwords have to match!",
	"productId":       "Product id must be a valid id.",
}

type CustomValidator struct {
	v *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.Round(2).IsPositive()
	})
	return &CustomValidator{v: v}
}

// Validate returns a *service.ValidationError listing the first failing rule per field.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := service.FieldErrors{}
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		if msg, ok := fieldMessages[name]; ok {
			fields[name] = msg
		} else {
			fields[name] = name + " is invalid"
		}
	}
	return &service.ValidationError{Fields: fields}
}
