package serviceutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the `validate` struct tags of v.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// CustomValidator plugs go-playground/validator into echo.
type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: validate}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
