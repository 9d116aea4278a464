package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const MaxLimit = 100

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit int
}

// FromContext reads the limit query parameter. A missing or invalid value
// falls back to defaultLimit; the result is capped at MaxLimit.
func FromContext(c echo.Context, defaultLimit int) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Limit: limit}
}
