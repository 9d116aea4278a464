package reading

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
)

func statusOf(err error) int {
	var ae *envelope.Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func postJSON(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/bp-readings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_CreateAndList(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	c, rec := postJSON(e, `{"user_id":1,"systolic":125,"diastolic":82,"notes":"after coffee"}`)
	if err := h.CreateReading(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var created struct {
		Success bool    `json:"success"`
		Reading Reading `json:"reading"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)
	if !created.Success || created.Reading.Status != StatusElevated {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/bp-readings?user_id=1", nil), rec)
	if err := h.ListReadings(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var listed struct {
		Readings []Reading `json:"readings"`
	}
	json.Unmarshal(rec.Body.Bytes(), &listed)
	if len(listed.Readings) != 1 || listed.Readings[0].Systolic != 125 || listed.Readings[0].Diastolic != 82 {
		t.Errorf("unexpected readings %s", rec.Body.String())
	}
}

func TestHandler_CreateReading_MissingSystolic(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	c, _ := postJSON(echo.New(), `{"user_id":1,"diastolic":82}`)
	err := h.CreateReading(c)
	if statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	var ae *envelope.Error
	errors.As(err, &ae)
	if ae.Message != "Missing required fields: user_id, systolic, diastolic" {
		t.Errorf("unexpected message %q", ae.Message)
	}
}

func TestHandler_ListReadings_MissingUser(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/bp-readings", nil), httptest.NewRecorder())
	if err := h.ListReadings(c); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
