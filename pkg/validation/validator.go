package validation

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator adapts go-playground/validator to the echo.Validator
// interface.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func New() *CustomValidator {
	v := validator.New()

	registerNullTypes(v)

	if err := registerRules(v); err != nil {
		panic("registro de reglas de validación: " + err.Error())
	}

	return &CustomValidator{validator: v}
}
