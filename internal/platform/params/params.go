// Package params parses the identifiers shared by every resource route.
package params

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/auth"
	"github.com/bptrack/bptrack/internal/platform/envelope"
)

// ParseUserID parses a positive user id. An empty value reports
// "user_id is required".
func ParseUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, envelope.BadRequest("user_id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, envelope.BadRequest("user_id must be a positive integer")
	}
	return id, nil
}

// QueryUserID reads ?user_id and checks that the caller may access it.
func QueryUserID(c echo.Context) (int64, error) {
	id, err := ParseUserID(c.QueryParam("user_id"))
	if err != nil {
		return 0, err
	}
	return id, auth.CheckUser(c.Request().Context(), id)
}

// BodyUserID validates a user id decoded from a JSON body.
func BodyUserID(c echo.Context, id *int64) (int64, error) {
	if id == nil {
		return 0, envelope.BadRequest("user_id is required")
	}
	if *id <= 0 {
		return 0, envelope.BadRequest("user_id must be a positive integer")
	}
	return *id, auth.CheckUser(c.Request().Context(), *id)
}

// PathID parses a positive numeric path parameter.
func PathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, envelope.BadRequest("invalid " + name)
	}
	return id, nil
}

// Bind decodes the request body, reporting malformed input as a 400.
func Bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return envelope.BadRequest("Invalid request body")
	}
	return nil
}
