package binder

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shishobooks/circulation/pkg/errcodes"
)

// FieldError is the message for one invalid field, keyed by its json name.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors is the result of validating a struct. It is empty when the
// struct is valid.
type FieldErrors []FieldError

func (fe FieldErrors) OK() bool {
	return len(fe) == 0
}

// Map returns the messages keyed by field name.
func (fe FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		m[e.Field] = e.Message
	}
	return m
}

// Err converts the result into an errcodes validation error, or nil when
// there is nothing to report.
func (fe FieldErrors) Err() error {
	if fe.OK() {
		return nil
	}
	return errcodes.ValidationFieldErrors(fe[0].Message, fe.Map())
}

var (
	defaultValidate     *validator.Validate
	defaultValidateOnce sync.Once
)

// Validate checks i against its validate tags and returns every failing
// field. It has no side effects, so services can validate input that didn't
// come through an HTTP request.
func Validate(i interface{}) FieldErrors {
	defaultValidateOnce.Do(func() {
		v, err := newValidate()
		if err != nil {
			panic(err)
		}
		defaultValidate = v
	})
	return validateStruct(defaultValidate, i)
}

func validateStruct(validate *validator.Validate, i interface{}) FieldErrors {
	err := validate.Struct(i)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{{Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(errs))
	for _, e := range errs {
		out = append(out, FieldError{Field: e.Field(), Message: formatValidationError(e)})
	}
	return out
}
