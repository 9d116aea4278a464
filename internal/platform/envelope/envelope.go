// Package envelope renders every API response as {"success": bool, ...}
// and maps service errors onto HTTP status codes.
package envelope

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Map is a success payload. Its keys are merged next to "success".
type Map map[string]any

// Sentinel errors returned by services.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalidf builds a ValidationError.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundf wraps ErrNotFound with a caller-visible message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Error is an HTTP failure. Message is public; Err is logged only.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error { return &Error{Status: http.StatusBadRequest, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Status: http.StatusForbidden, Message: msg} }

// Unavailable reports a dependency that is not configured or not reachable.
func Unavailable(msg string, err error) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Message: msg, Err: err}
}

// Internal hides err behind msg.
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// FromService maps a service error to an HTTP error. Validation errors
// become 400, ErrNotFound 404, ErrForbidden 403 and anything else a 500
// carrying fallback as its public message.
func FromService(err error, fallback string) *Error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return BadRequest(ve.Message)
	case errors.Is(err, ErrNotFound):
		return &Error{Status: http.StatusNotFound, Message: publicMessage(err, ErrNotFound)}
	case errors.Is(err, ErrForbidden):
		return &Error{Status: http.StatusForbidden, Message: publicMessage(err, ErrForbidden)}
	}
	var he *Error
	if errors.As(err, &he) {
		return he
	}
	return Internal(fallback, err)
}

// publicMessage strips the sentinel suffix added by NotFoundf.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	suffix := ": " + sentinel.Error()
	if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
		return msg[:len(msg)-len(suffix)]
	}
	return msg
}

// OK writes a success envelope.
func OK(c echo.Context, status int, payload Map) error {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	return c.JSON(status, body)
}

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HTTPErrorHandler renders failures as envelopes. The cause of a 5xx is
// logged with the request id and never written to the response.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "Internal server error"
		cause := err

		var ae *Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			status, msg, cause = ae.Status, ae.Message, ae.Err
		case errors.As(err, &he):
			status = he.Code
			msg = fmt.Sprint(he.Message)
			cause = he.Internal
			if status >= http.StatusInternalServerError {
				msg = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			evt := logger.Error().
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status)
			if cause != nil {
				evt = evt.Err(cause)
			}
			evt.Msg(msg)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, failure{Success: false, Error: msg})
	}
}
