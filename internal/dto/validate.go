package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate applies the struct's validate tags on top of gin's binding pass,
// covering enum constraints binding cannot express.
func Validate(v interface{}) error {
	return validate.Struct(v)
}
