package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// publicPaths bypass authentication.
var publicPaths = map[string]bool{
	"/health":    true,
	"/health/db": true,
}

// DoctorViewPath serves the token-authenticated doctor view.
const DoctorViewPath = "/api/doctor-sharing"

// AuthSkipper returns true for health checks and for the doctor view, which
// authenticates with its own signed share token instead of a bearer token.
func AuthSkipper(c echo.Context) bool {
	req := c.Request()
	if publicPaths[req.URL.Path] {
		return true
	}
	return req.Method == http.MethodGet &&
		req.URL.Path == DoctorViewPath &&
		c.QueryParam("token") != ""
}

// IsPublicPath reports whether path is a public infrastructure endpoint.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
