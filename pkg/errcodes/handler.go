package errcodes

import (
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is an Echo error handler that renders *Error and *echo.HTTPError
// values with their own status, and any other error as an internal server
// error.
func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}

	httpCode, body := payload(err)

	if httpCode == http.StatusInternalServerError {
		logger.FromEchoContext(c).Err(err).Error("server error")
	}

	// Contention clears up as soon as the other transaction finishes.
	if IsRetryable(err) {
		c.Response().Header().Set("Retry-After", "1")
	}

	if err := c.JSON(httpCode, map[string]interface{}{"error": body}); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func payload(err error) (int, map[string]interface{}) {
	code := ""
	msg := ""
	httpCode := http.StatusInternalServerError
	body := map[string]interface{}{}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		httpCode = he.Code
		msg = fmt.Sprint(he.Message)
		code = strcase.ToSnake(msg)
	}

	var e *Error
	if errors.As(err, &e) {
		httpCode = e.HTTPCode
		code = e.Code
		msg = e.Message
		if e.Kind != "" {
			body["kind"] = e.Kind
		}
		if e.Kind == KindContention {
			body["retryable"] = true
		}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
	}

	if httpCode == http.StatusInternalServerError && msg == "" {
		code = "internal_server_error"
		msg = "Internal Server Error"
	}

	body["code"] = code
	body["message"] = msg
	body["status_code"] = httpCode

	return httpCode, body
}
