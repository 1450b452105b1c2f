package binder

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	dateTag     = "date"
	emailTag    = "email"
	futureTag   = "future"
	maxTag      = "max"
	minTag      = "min"
	phoneTag    = "phone"
	requiredTag = "required"
	urlTag      = "url"
)

// fixedMessages holds the message for every tag whose text doesn't depend on
// the tag's parameter.
var fixedMessages = map[string]string{
	dateTag:     "should be in the format of YYYY-MM-DD",
	emailTag:    "is not a valid email",
	futureTag:   "must be a date after today",
	phoneTag:    "must look like +7XXXXXXXXXX or 8XXXXXXXXXX",
	requiredTag: "is required",
	urlTag:      "must be an http or https URL",
}

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatTimeParseError(err *time.ParseError) string {
	return fmt.Sprintf("%q is not an RFC 3339 timestamp", err.Value)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	if msg, ok := fixedMessages[err.Tag()]; ok {
		return fmt.Sprintf("%q %s", field, msg)
	}

	switch err.Tag() {
	case maxTag:
		return formatBound(field, "less than or equal to", err)
	case minTag:
		return formatBound(field, "greater than or equal to", err)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// formatBound words a min or max failure. Numbers are compared by value and
// strings by length.
func formatBound(field, comparison string, err validator.FieldError) string {
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, comparison, err.Param())
	default:
		unit := "character"
		if err.Param() != "1" {
			unit += "s"
		}
		return fmt.Sprintf("%q length must be %s %s %s", field, comparison, err.Param(), unit)
	}
}
