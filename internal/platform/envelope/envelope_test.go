package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestOK_MergesPayload(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := OK(c, http.StatusCreated, Map{"reading": map[string]int{"id": 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
	if _, ok := body["reading"]; !ok {
		t.Error("expected reading key")
	}
}

func TestFromService(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", Invalidf("systolic is required"), 400, "systolic is required"},
		{"wrapped validation", fmt.Errorf("create: %w", Invalidf("bad")), 400, "bad"},
		{"not found", NotFoundf("user 7 not found"), 404, "user 7 not found"},
		{"forbidden", ErrForbidden, 403, "forbidden"},
		{"other", errors.New("connection refused"), 500, "Failed to save"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromService(tt.err, "Failed to save")
			if got.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, got.Status)
			}
			if got.Message != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, got.Message)
			}
		})
	}
}

func TestHTTPErrorHandler_HidesInternalCause(t *testing.T) {
	var logs strings.Builder
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zerolog.New(&logs))
	e.GET("/boom", func(c echo.Context) error {
		return Internal("Failed to fetch readings", errors.New("pq: relation missing"))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != false || body["error"] != "Failed to fetch readings" {
		t.Errorf("unexpected body %v", body)
	}
	if strings.Contains(rec.Body.String(), "relation missing") {
		t.Error("cause leaked into response")
	}
	if !strings.Contains(logs.String(), "relation missing") {
		t.Error("expected cause to be logged")
	}
}

func TestHTTPErrorHandler_EchoErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zerolog.New(io.Discard))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != false || body["error"] != "Not Found" {
		t.Errorf("unexpected body %v", body)
	}
}
