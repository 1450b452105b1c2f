package binder

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	dateRE  = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
	phoneRE = regexp.MustCompile(`^(\+7|8)\d{10}$`)
)

// DateLayout is the layout of values accepted by the date validator.
const DateLayout = "2006-01-02"

// now is swapped out in tests.
var now = time.Now

func newValidate() (*validator.Validate, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validations := map[string]validator.Func{
		dateTag:   dateValidator,
		urlTag:    urlValidator,
		phoneTag:  phoneValidator,
		futureTag: futureValidator,
	}
	for tag, fn := range validations {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return validate, nil
}

// dateValidator ensures the value matches the format YYYY-MM-DD or the empty
// string. The reason the empty string is allowed is that this validator can be
// used to clear out values. However, this is only useful in that case, so if
// you're using this validator but want the value to be required, add a `ne=` to
// the validate tag so that the empty string is disallowed.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if !dateRE.MatchString(value) {
		return false
	}
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// urlValidator accepts absolute http(s) URLs, or the empty string.
func urlValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// phoneValidator accepts Russian mobile numbers written as +7XXXXXXXXXX or
// 8XXXXXXXXXX, or the empty string.
func phoneValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return phoneRE.MatchString(value)
}

// futureValidator accepts a YYYY-MM-DD date strictly after today in local
// time. Malformed dates are left to the date validator.
func futureValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	d, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return false
	}
	y, m, day := now().Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.Local)
	return d.After(today)
}
