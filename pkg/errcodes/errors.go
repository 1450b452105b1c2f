package errcodes

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an error for callers that need to decide what to do with it
// without knowing the concrete code.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindBusinessRule Kind = "business_rule"
	KindContention   Kind = "contention"
	KindValidation   Kind = "validation"
	KindRequest      Kind = "request"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	Kind     Kind
	// Fields holds per-field validation messages keyed by the json field name.
	Fields map[string]string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	te.Kind = err.Kind
	te.Fields = err.Fields
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// KindOf returns the kind of the first *Error in err's chain, or the empty
// kind if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether the operation that produced err may succeed if
// the caller tries again. Only contention conflicts qualify.
func IsRetryable(err error) bool {
	return KindOf(err) == KindContention
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " not found.",
		Code:     "not_found",
		Kind:     KindNotFound,
	}
}

// BusinessRule returns a 422 error for a request that is well-formed but
// breaks a domain rule. The user can correct it and try again.
func BusinessRule(code, msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     code,
		Kind:     KindBusinessRule,
	}
}

// Contention returns a 409 error for a failure caused by concurrent access to
// the same rows (lock wait timeout, deadlock, busy database).
func Contention(msg string) error {
	return &Error{
		HTTPCode: http.StatusConflict,
		Message:  msg,
		Code:     "contention_conflict",
		Kind:     KindContention,
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
		Kind:     KindRequest,
	}
}

func UnknownParameter(param string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  fmt.Sprintf("Unknown Parameter %q", param),
		Code:     "unknown_parameter",
		Kind:     KindValidation,
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_type_error",
		Kind:     KindValidation,
	}
}

func ValidationError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_error",
		Kind:     KindValidation,
	}
}

// ValidationFieldErrors returns a 422 error carrying every field-level message.
// The top-level message is the first field's message so clients that only
// read "message" still get something useful.
func ValidationFieldErrors(first string, fields map[string]string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  first,
		Code:     "validation_error",
		Kind:     KindValidation,
		Fields:   fields,
	}
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
		Kind:     KindRequest,
	}
}

func EmptyRequestBody() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Request body can't be empty.",
		Code:     "empty_request_body",
		Kind:     KindRequest,
	}
}
