// Package validator wraps go-playground/validator so handlers receive it
// by injection instead of reaching for a package-level instance.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates request DTOs against their struct tags.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the default tag set.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct validates a struct's tagged fields.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates one value against a tag expression.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation adds a custom tag.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
