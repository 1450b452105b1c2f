package binder

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type mockFieldError struct {
	tag   string
	field string
	param string
	kind  reflect.Kind
}

func (e *mockFieldError) Error() string           { return "Mock Field Error" }
func (e *mockFieldError) Tag() string             { return e.tag }
func (e *mockFieldError) ActualTag() string       { return e.tag }
func (e *mockFieldError) Namespace() string       { return "" }
func (e *mockFieldError) StructNamespace() string { return "" }
func (e *mockFieldError) Field() string           { return e.field }
func (e *mockFieldError) StructField() string     { return "" }
func (e *mockFieldError) Value() interface{}      { return "" }
func (e *mockFieldError) Param() string           { return e.param }
func (e *mockFieldError) Kind() reflect.Kind {
	if e.kind == 0 {
		return reflect.String
	}
	return e.kind
}
func (e *mockFieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *mockFieldError) Translate(_ ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	cases := []struct {
		tag   string
		param string
		kind  reflect.Kind
		msg   string
	}{
		{emailTag, "", 0, `"multi_word" is not a valid email`},
		{maxTag, "200", reflect.String, `"multi_word" length must be less than or equal to 200 characters`},
		{maxTag, "1", reflect.String, `"multi_word" length must be less than or equal to 1 character`},
		{minTag, "20", reflect.String, `"multi_word" length must be greater than or equal to 20 characters`},
		{maxTag, "10000", reflect.Int, `"multi_word" must be less than or equal to 10000`},
		{minTag, "1", reflect.Int, `"multi_word" must be greater than or equal to 1`},
		{minTag, "0", reflect.Float64, `"multi_word" must be greater than or equal to 0`},
		{requiredTag, "", 0, `"multi_word" is required`},
		{phoneTag, "", 0, `"multi_word" must look like +7XXXXXXXXXX or 8XXXXXXXXXX`},
		{futureTag, "", 0, `"multi_word" must be a date after today`},
		{urlTag, "", 0, `"multi_word" must be an http or https URL`},
		{dateTag, "", 0, `"multi_word" should be in the format of YYYY-MM-DD`},
		{"oneof", "a b", 0, `"multi_word" is invalid`},
	}

	for _, tt := range cases {
		err := mockFieldError{tag: tt.tag, field: "multi_word", param: tt.param, kind: tt.kind}
		msg := formatValidationError(&err)
		assert.Equal(t, tt.msg, msg)
	}
}
