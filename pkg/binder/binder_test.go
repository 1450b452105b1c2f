package binder

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" form:"hello" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

type listParams struct {
	Page     int    `query:"page" default:"1" validate:"min=1"`
	PageSize int    `query:"page_size" default:"10" validate:"min=1,max=100"`
	Sort     string `query:"sort"`
}

type readerPayload struct {
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Phone    string `json:"phone" mod:"trim" validate:"phone"`
	CoverURL string `json:"cover_url" validate:"url"`
	DueDate  string `json:"due_date" validate:"required,date,future"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json and application/x-www-form-urlencoded", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"hello" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})

	t.Run("binds url encoded forms", func(tt *testing.T) {
		c := newContext(url.Values{"hello": {" form "}}.Encode(), echo.MIMEApplicationForm)
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "form", p.Hello)
	})

	t.Run("rejects an empty body", func(tt *testing.T) {
		c := newContext("", echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.True(tt, errors.Is(err, errcodes.EmptyRequestBody()))
	})

	t.Run("binds query params with defaults", func(tt *testing.T) {
		c := newQueryContext("/?page=3&sort=-name")
		p := listParams{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, 3, p.Page)
		assert.Equal(tt, 10, p.PageSize)
		assert.Equal(tt, "-name", p.Sort)
	})

	t.Run("reports query type errors", func(tt *testing.T) {
		c := newQueryContext("/?page=abc")
		p := listParams{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"page" should be of type int`)
	})

	t.Run("reports unknown query params", func(tt *testing.T) {
		c := newQueryContext("/?nope=1")
		p := listParams{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "nope"`)
	})

	t.Run("returns every failing field", func(tt *testing.T) {
		c := newContext(`{"email":"nope","phone":"12345","cover_url":"ftp://x","due_date":"2000-01-01"}`, echo.MIMEApplicationJSON)
		p := readerPayload{}
		err := b.Bind(&p, c)
		require.Error(tt, err)

		var e *errcodes.Error
		require.True(tt, errors.As(err, &e))
		assert.Equal(tt, http.StatusUnprocessableEntity, e.HTTPCode)
		assert.Equal(tt, errcodes.KindValidation, e.Kind)
		assert.Len(tt, e.Fields, 4)
		assert.Equal(tt, `"email" is not a valid email`, e.Fields["email"])
		assert.Equal(tt, e.Fields["email"], e.Message)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateLayout)

	fe := Validate(&readerPayload{Email: "anna@example.com", Phone: "+79991234567", DueDate: tomorrow})
	assert.True(t, fe.OK())
	assert.NoError(t, fe.Err())

	fe = Validate(&readerPayload{Email: "anna@example.com", Phone: "89991234567", CoverURL: "https://example.com/a.png", DueDate: tomorrow})
	assert.True(t, fe.OK())

	fe = Validate(&readerPayload{Phone: "+7999", DueDate: "2024-02-30"})
	require.False(t, fe.OK())
	m := fe.Map()
	assert.Equal(t, `"email" is required`, m["email"])
	assert.Equal(t, `"phone" must look like +7XXXXXXXXXX or 8XXXXXXXXXX`, m["phone"])
	assert.Equal(t, `"due_date" should be in the format of YYYY-MM-DD`, m["due_date"])
	assert.Error(t, fe.Err())
}

func TestFutureValidator(t *testing.T) {
	today := time.Now().Format(DateLayout)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateLayout)

	type payload struct {
		DueDate string `json:"due_date" validate:"future"`
	}

	assert.False(t, Validate(&payload{DueDate: today}).OK())
	assert.True(t, Validate(&payload{DueDate: tomorrow}).OK())
	assert.True(t, Validate(&payload{}).OK())
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}

func newQueryContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.GET, target, nil)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
